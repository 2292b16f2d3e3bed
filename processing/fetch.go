package processing

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"folio/logging"

	_ "golang.org/x/image/webp"
)

// maxFetchBytes caps what we read back from the asset store for compositing
const maxFetchBytes = 64 * 1024 * 1024

// ImageFetcher loads an already stored image back over the network
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// HTTPFetcher downloads and decodes one source per call. Decoded sources are
// not kept; CoverComposer caches the much smaller filled tiles instead.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	img, format, err := image.Decode(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	logging.Debug("Fetched %s image %s (%dx%d)", format, url, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}
