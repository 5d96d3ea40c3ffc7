package out

import (
	"context"

	v1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/bnema/dexplore/pkg/imageref"
)

// RegistryClient defines the contract for fetching images from a registry.
type RegistryClient interface {
	// Image resolves ref to a lazily fetched remote image.
	Image(ctx context.Context, ref imageref.Reference) (v1.Image, error)
}
