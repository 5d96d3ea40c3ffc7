// Package registry implements the registry client used by the downloader,
// on top of go-containerregistry.
package registry

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/rs/zerolog"

	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
	"github.com/bnema/dexplore/pkg/imageref"
)

// Client fetches images from a registry.
type Client struct {
	keychain  authn.Keychain
	transport http.RoundTripper
	userAgent string
	log       zerolog.Logger
}

var _ out.RegistryClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithInsecure skips TLS certificate verification.
func WithInsecure(insecure bool) Option {
	return func(c *Client) {
		if !insecure {
			return
		}
		if tr, ok := c.transport.(*http.Transport); ok {
			tr.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec
			}
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(tr http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = tr
	}
}

// WithKeychain replaces the credential lookup. The default reads the
// Docker CLI config.
func WithKeychain(kc authn.Keychain) Option {
	return func(c *Client) {
		c.keychain = kc
	}
}

// WithUserAgent sets the User-Agent sent to the registry.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a registry client.
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		keychain:  authn.DefaultKeychain,
		transport: defaultTransport(),
		log:       logging.ForAdapter(log, "registry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Image resolves ref and returns a lazily fetched image. Only the manifest
// is requested here; config and layers are fetched when read.
func (c *Client) Image(ctx context.Context, ref imageref.Reference) (v1.Image, error) {
	options := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(c.keychain),
		remote.WithTransport(c.transport),
	}
	if c.userAgent != "" {
		options = append(options, remote.WithUserAgent(c.userAgent))
	}

	c.log.Debug().
		Str("registry", ref.Registry).
		Str("reference", ref.String()).
		Msg("fetching image manifest")

	img, err := remote.Image(ref.Name(), options...)
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not fetch manifest for %s", ref)
	}
	return img, nil
}

// defaultTransport mimics http.DefaultTransport.
func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
