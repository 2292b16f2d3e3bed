package lifecycle

import (
	"context"
	"strings"
	"testing"

	"folio/models"
	"folio/processing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func video(name string) *File {
	return &File{Name: name, ContentType: "video/mp4", Data: []byte("mp4 " + name)}
}

func heroCount(t *testing.T, f *fixture) int64 {
	var count int64
	require.NoError(t, f.svc.DB.Model(&models.HeroConfig{}).Count(&count).Error)
	return count
}

func TestUpdateHeroCreatesSingleRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hero, err := f.svc.GetHero(ctx)
	require.NoError(t, err)
	assert.Zero(t, hero.ID)

	res := f.svc.UpdateHero(ctx, NewForm().Set("description", "Hello").SetFile("desktop_video", video("d1")))
	require.True(t, res.Success, res.Message)
	res = f.svc.UpdateHero(ctx, NewForm().Set("description", "Hello again").Set("location", "Lyon"))
	require.True(t, res.Success, res.Message)
	assert.EqualValues(t, 1, heroCount(t, f))

	hero, err = f.svc.GetHero(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", hero.Description)
	assert.Equal(t, "Lyon", hero.Location)
	assert.Contains(t, hero.DesktopVideoURL, "/video/upload/")
}

func TestUpdateHeroPosterFromRemoteFrame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d1")).SetFile("mobile_video", video("m1")))
	require.True(t, res.Success, res.Message)
	hero, _ := f.svc.GetHero(ctx)

	require.Len(t, f.posters.calls, 1)
	assert.Equal(t, hero.DesktopVideoURL, f.posters.calls[0])
	want, _ := processing.FrameURL(hero.DesktopVideoURL)
	assert.Equal(t, want, hero.PosterURL)
	assert.Zero(t, f.frames.calls)
	assert.Empty(t, f.gateway.uploadsTo(FolderHero)[2:], "only the two videos are uploaded")
}

func TestUpdateHeroPosterFallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.posters.err = processing.ErrFrameUnavailable

	res := f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d1")))
	require.True(t, res.Success, res.Message)
	hero, _ := f.svc.GetHero(ctx)
	assert.Equal(t, 1, f.frames.calls, "local extraction from the uploaded bytes")
	assert.Contains(t, hero.PosterURL, "/image/upload/")
	firstPoster := hero.PosterURL
	firstVideo := hero.DesktopVideoURL

	// every option fails: the previous poster stays, and so does the video it came from
	f.frames.err = processing.ErrFrameUnavailable
	f.reset()
	res = f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d2")))
	require.True(t, res.Success, res.Message)
	hero, _ = f.svc.GetHero(ctx)
	assert.Equal(t, firstPoster, hero.PosterURL)
	assert.NotEqual(t, firstVideo, hero.DesktopVideoURL)
	assert.Equal(t, publicIDs(firstVideo), f.gateway.deleted())
}

func TestUpdateHeroReplacingVideoDropsDerivedPoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d1"))).Success)
	old, _ := f.svc.GetHero(ctx)
	f.reset()

	require.True(t, f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d2"))).Success)
	hero, _ := f.svc.GetHero(ctx)
	assert.NotEqual(t, old.PosterURL, hero.PosterURL)
	assert.True(t, strings.HasSuffix(hero.PosterURL, ".jpg"))
	// the old poster is a frame of the old video: one delete covers both
	assert.Equal(t, publicIDs(old.DesktopVideoURL), f.gateway.deleted())
}

func TestUpdateHeroAltGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.UpdateHero(ctx, NewForm().SetFile("hero_photo", pngFile(t, 10, 10)).SetFile("desktop_video", video("d1")))
	assert.ErrorIs(t, res.Err, ErrAltRequired)
	assert.Empty(t, f.gateway.uploads)

	res = f.svc.UpdateHero(ctx, NewForm().SetFile("hero_photo", pngFile(t, 10, 10)).Set("hero_alt", "Portrait"))
	require.True(t, res.Success, res.Message)

	// the photo is still there, so alt stays mandatory
	res = f.svc.UpdateHero(ctx, NewForm().Set("description", "x"))
	assert.ErrorIs(t, res.Err, ErrAltRequired)
}

func TestUpdateHeroUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.failWith["video"] = errBoom
	res := f.svc.UpdateHero(context.Background(), NewForm().SetFile("desktop_video", video("d1")))
	assert.False(t, res.Success)
	assert.Zero(t, heroCount(t, f))
}

func TestRegeneratePoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, f.svc.RegeneratePoster(ctx, true).Err, ErrNotFound)

	f.posters.err = processing.ErrFrameUnavailable
	f.frames.err = processing.ErrFrameUnavailable
	require.True(t, f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d1"))).Success)
	hero, _ := f.svc.GetHero(ctx)
	assert.Empty(t, hero.PosterURL)

	res := f.svc.RegeneratePoster(ctx, false)
	assert.ErrorIs(t, res.Err, processing.ErrFrameUnavailable)

	f.posters.err = nil
	res = f.svc.RegeneratePoster(ctx, false)
	require.True(t, res.Success, res.Message)
	hero, _ = f.svc.GetHero(ctx)
	assert.NotEmpty(t, hero.PosterURL)

	calls := len(f.posters.calls)
	require.True(t, f.svc.RegeneratePoster(ctx, false).Success)
	assert.Len(t, f.posters.calls, calls, "existing poster is kept without force")
	require.True(t, f.svc.RegeneratePoster(ctx, true).Success)
	assert.Len(t, f.posters.calls, calls+1)
	assert.Empty(t, f.gateway.deletes, "a regenerated frame of the same video deletes nothing")
}

func TestUpdateHeroForcedPoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.svc.UpdateHero(ctx, NewForm().SetFile("desktop_video", video("d1"))).Success)
	f.reset()

	require.True(t, f.svc.UpdateHero(ctx, NewForm().Set("regenerate_poster", "on")).Success)
	assert.Len(t, f.posters.calls, 1)
	assert.Zero(t, f.frames.calls)
	assert.Empty(t, f.gateway.deletes)
}
