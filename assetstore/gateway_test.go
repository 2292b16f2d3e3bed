package assetstore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway(remote *fakeRemote) *Gateway {
	g := newGateway(remote, "portfolio")
	g.compress = func(b []byte) []byte { return b }
	g.now = func() time.Time { return time.UnixMilli(1712345678901) }
	return g
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewGatewayRequiresCredentials(t *testing.T) {
	_, err := NewGateway(Config{CloudName: "demo"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewBaseName(t *testing.T) {
	g := testGateway(newFakeRemote())
	a, b := g.NewBaseName(), g.NewBaseName()
	assert.True(t, strings.HasPrefix(a, "1712345678901_"))
	assert.Len(t, a, len("1712345678901_")+10)
	assert.NotEqual(t, a, b)
}

func TestUploadImageClasses(t *testing.T) {
	remote := newFakeRemote()
	g := testGateway(remote)
	ctx := context.Background()
	data := pngOf(t, 400, 300)

	original, err := g.UploadImage(ctx, data, UploadOptions{Folder: "photos"})
	require.NoError(t, err)
	high, err := g.UploadImage(ctx, data, UploadOptions{Class: ClassHigh, Folder: "photos", OriginalID: original.PublicID})
	require.NoError(t, err)
	low, err := g.UploadImage(ctx, data, UploadOptions{Class: ClassLow, Folder: "photos", OriginalID: original.PublicID})
	require.NoError(t, err)

	require.Len(t, remote.uploads, 3)
	assert.True(t, strings.HasPrefix(original.PublicID, "portfolio/photos/1712345678901_"))
	base := strings.TrimPrefix(original.PublicID, "portfolio/photos/")
	assert.Equal(t, "portfolio/photos/"+base+"_high", high.PublicID)
	assert.Equal(t, "portfolio/photos/"+base+"_low", low.PublicID)

	// originals go up untouched
	assert.Empty(t, remote.uploads[0].Transformation)
	assert.Empty(t, remote.uploads[0].Format)

	assert.Equal(t, "c_scale,w_200,h_150,q_auto:eco", remote.uploads[1].Transformation)
	assert.Equal(t, "webp", remote.uploads[1].Format)
	assert.Equal(t, lowTransformation, remote.uploads[2].Transformation)
	assert.Equal(t, "webp", remote.uploads[2].Format)

	for _, u := range remote.uploads {
		require.NotNil(t, u.Overwrite)
		assert.True(t, *u.Overwrite)
		assert.Equal(t, ResourceImage, u.ResourceType)
	}
}

func TestUploadImageVariantOfVariantKeepsBase(t *testing.T) {
	g := testGateway(newFakeRemote())
	id := g.publicID(UploadOptions{Class: ClassLow, Folder: "photos", OriginalID: "portfolio/photos/123_abc_high"})
	assert.Equal(t, "portfolio/photos/123_abc_low", id)
	id = g.publicID(UploadOptions{Folder: "photos", OriginalID: "portfolio/photos/123_abc_original"})
	assert.Equal(t, "portfolio/photos/123_abc_original", id)
}

func TestHighTransformationFallsBackWhenUndecodable(t *testing.T) {
	assert.Equal(t, "c_scale,w_0.5,q_auto:eco", transformationFor(ClassHigh, []byte("not an image")))
	assert.Equal(t, "", transformationFor(ClassOriginal, []byte("x")))
}

func TestUploadImageCompressesPayload(t *testing.T) {
	remote := newFakeRemote()
	g := testGateway(remote)
	g.compress = func(b []byte) []byte { return b[:2] }

	_, err := g.UploadImage(context.Background(), []byte("abcdef"), UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), remote.payloads[0])
}

func TestUploadVideo(t *testing.T) {
	remote := newFakeRemote()
	g := testGateway(remote)
	res, err := g.UploadVideo(context.Background(), []byte("fake mp4"), UploadOptions{Folder: "hero"})
	require.NoError(t, err)
	assert.Equal(t, ResourceVideo, res.ResourceType)
	assert.Equal(t, videoTransformation, remote.uploads[0].Transformation)
	assert.Equal(t, ResourceVideo, remote.uploads[0].ResourceType)
	assert.Contains(t, res.URL, "/video/upload/")
}

func TestUploadErrors(t *testing.T) {
	remote := newFakeRemote()
	g := testGateway(remote)
	ctx := context.Background()

	_, err := g.UploadImage(ctx, nil, UploadOptions{})
	assert.ErrorIs(t, err, ErrUploadFailed)

	remote.uploadErr = errors.New("boom")
	_, err = g.UploadImage(ctx, []byte("x"), UploadOptions{})
	assert.ErrorIs(t, err, ErrUploadFailed)
	_, err = g.UploadVideo(ctx, []byte("x"), UploadOptions{})
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadedURLResolvesToPublicID(t *testing.T) {
	remote := newFakeRemote()
	g := testGateway(remote)
	for _, class := range []ResolutionClass{ClassOriginal, ClassHigh, ClassLow} {
		res, err := g.UploadImage(context.Background(), pngOf(t, 10, 10), UploadOptions{Class: class, Folder: "photos", OriginalID: "portfolio/photos/1_a"})
		require.NoError(t, err)
		id, ok := ResolvePublicID(res.URL)
		require.True(t, ok)
		assert.Equal(t, res.PublicID, id)
	}
}
