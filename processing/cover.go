package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"folio/logging"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

const (
	CoverWidth     = 1200
	CoverHeight    = 800
	MaxCoverPhotos = 3
	coverQuality   = 95
)

var (
	ErrNoPhotos = errors.New("processing: album has no photos")

	placeholderColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// CoverLayout returns the cell of every photo on the cover canvas.
// One photo fills the canvas, two split it in vertical halves and three use the
// left half plus two stacked cells on the right.
func CoverLayout(n int) []image.Rectangle {
	halfW, halfH := CoverWidth/2, CoverHeight/2
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []image.Rectangle{image.Rect(0, 0, CoverWidth, CoverHeight)}
	case n == 2:
		return []image.Rectangle{
			image.Rect(0, 0, halfW, CoverHeight),
			image.Rect(halfW, 0, CoverWidth, CoverHeight),
		}
	}
	return []image.Rectangle{
		image.Rect(0, 0, halfW, CoverHeight),
		image.Rect(halfW, 0, CoverWidth, halfH),
		image.Rect(halfW, halfH, CoverWidth, CoverHeight),
	}
}

// CoverComposer keeps the last filled tiles, keyed by source and cell size;
// covers of neighbouring albums tend to share photos. A tile is at most one
// canvas (1200x800 NRGBA, under 4MB), whatever the size of its source.
type CoverComposer struct {
	fetcher ImageFetcher
	tiles   *lru.Cache[string, image.Image]
}

// NewCoverComposer caches up to cacheSize tiles; 0 disables the cache
func NewCoverComposer(fetcher ImageFetcher, cacheSize int) *CoverComposer {
	c := &CoverComposer{fetcher: fetcher}
	if cacheSize > 0 {
		c.tiles, _ = lru.New[string, image.Image](cacheSize)
	}
	return c
}

func tileKey(url string, w, h int) string {
	return fmt.Sprintf("%dx%d %s", w, h, url)
}

// tile returns src filled into a w x h cell, or a placeholder when the source
// is unavailable. Placeholders are never cached.
func (c *CoverComposer) tile(ctx context.Context, url string, w, h int) image.Image {
	key := tileKey(url, w, h)
	if c.tiles != nil {
		if tile, ok := c.tiles.Get(key); ok {
			return tile
		}
	}
	src, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		logging.Warn("Cover source %s unavailable, using placeholder: %v", url, err)
		return imaging.New(w, h, placeholderColor)
	}
	tile := imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	if c.tiles != nil {
		c.tiles.Add(key, tile)
	}
	return tile
}

// Compose builds the JPEG cover from the first three URLs (in membership order).
// A source that cannot be fetched becomes a gray cell.
func (c *CoverComposer) Compose(ctx context.Context, urls []string) ([]byte, error) {
	if len(urls) == 0 {
		return nil, ErrNoPhotos
	}
	if len(urls) > MaxCoverPhotos {
		urls = urls[:MaxCoverPhotos]
	}
	cells := CoverLayout(len(urls))
	tiles := make([]image.Image, len(urls))

	var group errgroup.Group
	for i := range urls {
		i := i
		group.Go(func() error {
			tiles[i] = c.tile(ctx, urls[i], cells[i].Dx(), cells[i].Dy())
			return nil
		})
	}
	_ = group.Wait()

	canvas := imaging.New(CoverWidth, CoverHeight, placeholderColor)
	for i, tile := range tiles {
		canvas = imaging.Paste(canvas, tile, cells[i].Min)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(coverQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
