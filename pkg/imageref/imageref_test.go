package imageref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input      string
		repository string
		identifier string
	}{
		{input: "foo", repository: "library/foo", identifier: "latest"},
		{input: "foo/bar", repository: "foo/bar", identifier: "latest"},
		{input: "foo:bar", repository: "library/foo", identifier: "bar"},
		{input: "foo/bar:baz", repository: "foo/bar", identifier: "baz"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.repository, ref.Repository)
			assert.Equal(t, tt.identifier, ref.Identifier)
			assert.Equal(t, "index.docker.io", ref.Registry)
			assert.NotNil(t, ref.Name())
		})
	}
}

func TestParse_CustomRegistry(t *testing.T) {
	ref, err := Parse("gcr.io/project/app:v1")
	require.NoError(t, err)

	assert.Equal(t, "gcr.io", ref.Registry)
	assert.Equal(t, "project/app", ref.Repository)
	assert.Equal(t, "project/app:v1", ref.String())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("UPPER/case:tag")
	assert.Error(t, err)
}
