package assetstore

import (
	"errors"
	"testing"
)

func TestTransformURL(t *testing.T) {
	base := "https://res.example.com/demo/video/upload/v1712345678/portfolio/hero/clip.mp4?x=1"
	u, err := NewTransformURL(base)
	if err != nil {
		t.Fatal(err)
	}
	got := u.With("so", "0").With("w", "1280").With("h", "720").With("c", "limit").With("q", "auto").With("g", "").Format("jpg").String()
	want := "https://res.example.com/demo/video/upload/so_0,w_1280,h_720,c_limit,q_auto/v1712345678/portfolio/hero/clip.jpg"
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
	if id, _ := ResolvePublicID(got); id != "portfolio/hero/clip" {
		t.Errorf("transformed URL resolves to %q", id)
	}
}

func TestTransformURLWithoutParams(t *testing.T) {
	u, err := NewTransformURL("https://res.example.com/demo/image/upload/a/b.png")
	if err != nil {
		t.Fatal(err)
	}
	if got := u.String(); got != "https://res.example.com/demo/image/upload/a/b.png" {
		t.Errorf("got %s", got)
	}
	if got := u.Format(".webp").String(); got != "https://res.example.com/demo/image/upload/a/b.webp" {
		t.Errorf("got %s", got)
	}
}

func TestTransformURLRejectsForeignURL(t *testing.T) {
	for _, base := range []string{"https://example.com/a.mp4", "https://res.example.com/demo/video/upload/"} {
		if _, err := NewTransformURL(base); !errors.Is(err, ErrMissingUploadAnchor) {
			t.Errorf("NewTransformURL(%q) error = %v", base, err)
		}
	}
}
