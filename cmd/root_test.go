package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		code     int
		contains string
	}{
		{name: "no arguments shows help", args: []string{}, code: 0, contains: "dexplore reads a Docker root"},
		{name: "help flag", args: []string{"--help"}, code: 0, contains: "Available Commands"},
		{name: "version", args: []string{"version"}, code: 0, contains: "dexplore 1.0.0"},
		{name: "unknown command", args: []string{"inspect"}, code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := Execute("1.0.0", "abc123", "2024-01-01", tt.args, &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stdout.String(), tt.contains)
		})
	}
}
