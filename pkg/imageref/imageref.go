// Package imageref normalizes user supplied image references the way the
// Docker Hub resolves them.
package imageref

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// Reference is a parsed image reference.
// Supports formats:
//   - image (library/image:latest on the Hub)
//   - image:tag
//   - namespace/image:tag
//   - registry.example.com/image@sha256:...
type Reference struct {
	Registry   string
	Repository string
	// Identifier is the tag, or the digest for digest references.
	Identifier string

	ref name.Reference
}

// Parse parses s into a Reference. opts are forwarded to the
// go-containerregistry parser (name.Insecure for plain HTTP registries).
func Parse(s string, opts ...name.Option) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, fmt.Errorf("empty image reference")
	}

	ref, err := name.ParseReference(s, opts...)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid image reference %q: %w", s, err)
	}

	return Reference{
		Registry:   ref.Context().RegistryStr(),
		Repository: ref.Context().RepositoryStr(),
		Identifier: ref.Identifier(),
		ref:        ref,
	}, nil
}

// Name returns the underlying go-containerregistry reference.
func (r Reference) Name() name.Reference {
	return r.ref
}

// String returns repository:tag or repository@digest.
func (r Reference) String() string {
	if strings.Contains(r.Identifier, ":") {
		return r.Repository + "@" + r.Identifier
	}
	return r.Repository + ":" + r.Identifier
}
