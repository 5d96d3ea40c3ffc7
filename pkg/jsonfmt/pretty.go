// Package jsonfmt renders values as indented JSON for terminal output.
package jsonfmt

import (
	"bytes"
	"encoding/json"
)

// Indent is the indentation unit used by Pretty.
const Indent = "    "

// Pretty renders v with four-space indentation, without HTML escaping, and
// with a trailing newline. Ordered maps keep their insertion order.
func Pretty(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
