package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"folio/assetstore"
	"folio/db"
	"folio/models"
	"folio/processing"

	"github.com/stretchr/testify/require"
)

type upload struct {
	Resource string
	assetstore.UploadOptions
	PublicID string
}

type fakeGateway struct {
	mu       sync.Mutex
	names    int
	uploads  []upload
	deletes  [][]string
	failWith map[string]error // keyed by "image/high", "image/low", "image/original", "video"
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failWith: map[string]error{}}
}

func (g *fakeGateway) NewBaseName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names++
	return fmt.Sprintf("base%d", g.names)
}

func (g *fakeGateway) publicID(opts assetstore.UploadOptions) string {
	name := opts.OriginalID
	if name == "" {
		name = g.NewBaseName()
	} else if opts.Class == assetstore.ClassOriginal {
		name += "_original"
	} else {
		name += "_" + string(opts.Class)
	}
	return path.Join("portfolio", opts.Folder, name)
}

func (g *fakeGateway) record(resource string, opts assetstore.UploadOptions) (*assetstore.UploadResult, error) {
	key := resource
	if resource == assetstore.ResourceImage {
		class := string(opts.Class)
		if class == "" {
			class = "original"
		}
		key += "/" + class
	}
	id := g.publicID(opts)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failWith[key]; err != nil {
		return nil, fmt.Errorf("%w: %v", assetstore.ErrUploadFailed, err)
	}
	if err := g.failWith[opts.Folder]; err != nil {
		return nil, fmt.Errorf("%w: %v", assetstore.ErrUploadFailed, err)
	}
	g.uploads = append(g.uploads, upload{Resource: resource, UploadOptions: opts, PublicID: id})
	ext := "webp"
	if resource == assetstore.ResourceVideo {
		ext = "mp4"
	}
	return &assetstore.UploadResult{
		URL:          fmt.Sprintf("https://res.example.com/demo/%s/upload/v1/%s.%s", resource, id, ext),
		PublicID:     id,
		ResourceType: resource,
	}, nil
}

func (g *fakeGateway) UploadImage(ctx context.Context, data []byte, opts assetstore.UploadOptions) (*assetstore.UploadResult, error) {
	return g.record(assetstore.ResourceImage, opts)
}

func (g *fakeGateway) UploadVideo(ctx context.Context, data []byte, opts assetstore.UploadOptions) (*assetstore.UploadResult, error) {
	return g.record(assetstore.ResourceVideo, opts)
}

func (g *fakeGateway) DeleteAll(ctx context.Context, publicIDs []string) assetstore.DeleteReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, append([]string{}, publicIDs...))
	report := assetstore.DeleteReport{}
	for _, id := range publicIDs {
		report.Results = append(report.Results, assetstore.DeleteResult{PublicID: id, Deleted: true})
	}
	return report
}

func (g *fakeGateway) deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := []string{}
	for _, call := range g.deletes {
		ids = append(ids, call...)
	}
	sort.Strings(ids)
	return ids
}

func (g *fakeGateway) uploadsTo(folder string) []upload {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := []upload{}
	for _, u := range g.uploads {
		if u.Folder == folder {
			result = append(result, u)
		}
	}
	return result
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads = nil
	g.deletes = nil
}

type fakeComposer struct {
	calls [][]string
	err   error
}

func (c *fakeComposer) Compose(ctx context.Context, urls []string) ([]byte, error) {
	c.calls = append(c.calls, append([]string{}, urls...))
	if c.err != nil {
		return nil, c.err
	}
	return []byte("jpeg cover"), nil
}

type fakePosters struct {
	calls []string
	err   error
}

func (p *fakePosters) GenerateValidatedFrameURL(ctx context.Context, videoURL string) (string, error) {
	p.calls = append(p.calls, videoURL)
	if p.err != nil {
		return "", p.err
	}
	return processing.FrameURL(videoURL)
}

type fakeFrames struct {
	calls int
	err   error
}

func (f *fakeFrames) ExtractFrame(ctx context.Context, video []byte) (*processing.Frame, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &processing.Frame{Data: []byte("webp frame"), Format: "webp", Width: 1280, Height: 720}, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
}

func (a *fakeArchive) Save(ctx context.Context, key string, data []byte, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved[key] = data
	return nil
}

func (a *fakeArchive) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = append(a.removed, key)
	delete(a.saved, key)
	return nil
}

type fixture struct {
	svc      *Service
	gateway  *fakeGateway
	composer *fakeComposer
	posters  *fakePosters
	frames   *fakeFrames
	archive  *fakeArchive
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := db.Open("", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(catalog))
	f := &fixture{
		gateway:  newFakeGateway(),
		composer: &fakeComposer{},
		posters:  &fakePosters{},
		frames:   &fakeFrames{},
		archive:  &fakeArchive{saved: map[string][]byte{}},
	}
	f.svc = &Service{
		DB:             catalog,
		Assets:         f.gateway,
		Covers:         f.composer,
		Posters:        f.posters,
		Frames:         f.frames,
		Archive:        f.archive,
		StoreOriginals: true,
	}
	return f
}

// reset forgets the calls made while seeding
func (f *fixture) reset() {
	f.gateway.reset()
	f.composer.calls = nil
	f.posters.calls = nil
	f.frames.calls = 0
}

func pngFile(t *testing.T, w, h int) *File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &File{Name: "photo.png", ContentType: "image/png", Data: buf.Bytes()}
}

func photoForm(t *testing.T, alt string, albumIDs ...uint64) *Form {
	form := NewForm().Set("alt", alt).Set("title", "Dunes").Set("is_visible", "on").SetFile("image", pngFile(t, 40, 30))
	ids := []string{}
	for _, id := range albumIDs {
		ids = append(ids, fmt.Sprint(id))
	}
	return form.Set("album_ids", ids...)
}

func (f *fixture) mustCreatePhoto(t *testing.T, albumIDs ...uint64) models.Photo {
	t.Helper()
	res := f.svc.CreatePhoto(context.Background(), photoForm(t, "alt text", albumIDs...))
	require.True(t, res.Success, res.Message)
	var photo models.Photo
	require.NoError(t, f.svc.DB.First(&photo, res.ID).Error)
	return photo
}

func (f *fixture) mustCreateAlbum(t *testing.T, title string) models.Album {
	t.Helper()
	res := f.svc.CreateAlbum(context.Background(), NewForm().Set("title", title))
	require.True(t, res.Success, res.Message)
	return f.album(t, res.ID)
}

func (f *fixture) album(t *testing.T, id uint64) models.Album {
	t.Helper()
	var album models.Album
	require.NoError(t, f.svc.DB.First(&album, id).Error)
	return album
}

var errBoom = errors.New("boom")
