package identity

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/dexplore/internal/domain"
)

var overlayContainers = []string{
	"5dc287aa80b460652a5584e80a5c8c1233b0c0691972d75424cf5250b917600a",
	"4ad09bee61dcc675bf41085dbf38c31426a7ed6666fdd47521bfb8f5e67a7e6d",
	"42e8679f78d6ea623391cdbcb928740ed804f928bd94f94e1d98687f34c48311",
	"61ba4e6c012c782186c649466157e05adfd7caa5b551432de51043893cae5353",
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		wantOutcome Outcome
		wantID      string
		wantErr     string
	}{
		{
			name:        "abbreviated",
			prefix:      "5dc287aa80",
			wantOutcome: Matched,
			wantID:      "5dc287aa80b460652a5584e80a5c8c1233b0c0691972d75424cf5250b917600a",
		},
		{
			name:        "full id resolves to itself",
			prefix:      "61ba4e6c012c782186c649466157e05adfd7caa5b551432de51043893cae5353",
			wantOutcome: Matched,
			wantID:      "61ba4e6c012c782186c649466157e05adfd7caa5b551432de51043893cae5353",
		},
		{
			name:        "ambiguous lists sorted candidates",
			prefix:      "4",
			wantOutcome: Ambiguous,
			wantErr: `Too many container IDs starting with "4": ` +
				"42e8679f78d6ea623391cdbcb928740ed804f928bd94f94e1d98687f34c48311, " +
				"4ad09bee61dcc675bf41085dbf38c31426a7ed6666fdd47521bfb8f5e67a7e6d",
		},
		{
			name:        "not found",
			prefix:      "xx",
			wantOutcome: NotFound,
			wantErr:     `Could not find any container ID starting with "xx"`,
		},
		{
			name:        "case sensitive",
			prefix:      "5DC287",
			wantOutcome: NotFound,
			wantErr:     `Could not find any container ID starting with "5DC287"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(NounContainer, tt.prefix, overlayContainers)

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantID, res.ID)

			err := res.Err()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrContainer))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestResolve_EmptyPrefixEnumeratesAll(t *testing.T) {
	res := Resolve(NounContainer, "", overlayContainers)

	require.Equal(t, Ambiguous, res.Outcome)
	assert.Equal(t, []string{
		"42e8679f78d6ea623391cdbcb928740ed804f928bd94f94e1d98687f34c48311",
		"4ad09bee61dcc675bf41085dbf38c31426a7ed6666fdd47521bfb8f5e67a7e6d",
		"5dc287aa80b460652a5584e80a5c8c1233b0c0691972d75424cf5250b917600a",
		"61ba4e6c012c782186c649466157e05adfd7caa5b551432de51043893cae5353",
	}, res.Candidates)
	assert.Contains(t, res.Err().Error(), `Too many container IDs starting with "": 42e8`)
}

func TestResolve_Idempotent(t *testing.T) {
	for _, id := range overlayContainers {
		first := Resolve(NounContainer, id, overlayContainers)
		second := Resolve(NounContainer, first.ID, overlayContainers)
		assert.Equal(t, id, second.ID)
	}
}

func TestResolve_LayerNoun(t *testing.T) {
	res := Resolve(NounLayer, "sha256:zz", []string{"sha256:8ac4"})

	assert.Equal(t, `Could not find any layer ID starting with "sha256:zz"`, res.Err().Error())
}

func TestResolve_PrefixPrintedRaw(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "non ascii", prefix: "é", want: `Could not find any container ID starting with "é"`},
		{name: "quote", prefix: `a"b`, want: `Could not find any container ID starting with "a"b"`},
		{name: "backslash", prefix: `a\b`, want: `Could not find any container ID starting with "a\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(NounContainer, tt.prefix, overlayContainers)
			assert.Equal(t, tt.want, res.Err().Error())
		})
	}
}

func TestResolve_DuplicateKnownIDs(t *testing.T) {
	res := Resolve(NounContainer, "ab", []string{"abc", "abc"})

	assert.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "abc", res.ID)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "ambiguous", Ambiguous.String())
	assert.Equal(t, "not found", NotFound.String())
}
