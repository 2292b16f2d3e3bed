package assetstore

import "testing"

func TestResolvePublicID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"plain", "https://res.example.com/demo/image/upload/v1712345678/portfolio/photos/123_abc_high.webp", "portfolio/photos/123_abc_high", true},
		{"transformation and version", "https://res.example.com/demo/image/upload/v123/c_scale,w_500/folder/name.jpg", "folder/name", true},
		{"transformation first", "https://res.example.com/demo/video/upload/so_0,w_1280,h_720,c_limit,q_auto/v9/hero/clip.jpg", "hero/clip", true},
		{"size segment", "https://res.example.com/demo/image/upload/1280x720/albums/cover.jpg", "albums/cover", true},
		{"no version", "https://res.example.com/demo/image/upload/albums/cover.jpg", "albums/cover", true},
		{"query and fragment", "https://res.example.com/demo/image/upload/v1/a/b.png?_a=xyz#top", "a/b", true},
		{"no extension", "https://res.example.com/demo/image/upload/v1/a/b", "a/b", true},
		{"version looking name", "https://res.example.com/demo/image/upload/v1/v2", "v2", true},
		{"dotted folder", "https://res.example.com/demo/image/upload/v1/my.folder/b.jpg", "my.folder/b", true},
		{"foreign URL", "https://example.com/pictures/b.jpg", "", false},
		{"nothing after anchor", "https://res.example.com/demo/image/upload/", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolvePublicID(tt.url)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolvePublicID(%q) = %q, %v, want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
