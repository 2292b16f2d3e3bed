package models

import (
	"path/filepath"
	"testing"

	"folio/db"
)

func initTestDB(t *testing.T) {
	t.Helper()
	instance, err := db.Open("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	db.Instance = instance
	if err = Migrate(instance); err != nil {
		t.Fatal(err)
	}
}

func TestUserLogin(t *testing.T) {
	initTestDB(t)
	u, err := UserCreate("Admin", "admin@example.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if u.Password == "s3cret" || u.PassSalt == "" {
		t.Errorf("password stored in plain text")
	}
	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"ok", "admin@example.com", "s3cret", true},
		{"wrong password", "admin@example.com", "nope", false},
		{"unknown user", "ghost@example.com", "s3cret", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UserLogin(tt.email, tt.password)
			if ok != tt.want {
				t.Errorf("UserLogin() success = %v, want %v", ok, tt.want)
			}
			if ok && got.ID != u.ID {
				t.Errorf("UserLogin() ID = %d, want %d", got.ID, u.ID)
			}
		})
	}
	if _, err = UserCreate("Dup", "admin@example.com", "x"); err == nil {
		t.Errorf("duplicate email accepted")
	}
}

func TestPhotoAssetURLs(t *testing.T) {
	p := Photo{HighURL: "h", LowURL: "l"}
	if got := p.AssetURLs(); len(got) != 3 || got[0] != "h" || got[2] != "" {
		t.Errorf("AssetURLs() = %v", got)
	}
}
