package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"image"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// Sha512String hashes and encodes in hex the result
func Sha512String(s string) string {
	hash := sha512.New()
	hash.Write([]byte(s))
	return hex.EncodeToString(hash.Sum(nil))
}

func RandSalt(saltSize int) string {
	b := make([]byte, saltSize)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func Rand16BytesToBase62() string {
	buf := make([]byte, 16)
	_, err := rand.Read(buf)
	if err != nil {
		panic(err)
	}
	var i big.Int
	return i.SetBytes(buf).Text(62)
}

// FitWithin scales img down to fit maxW x maxH keeping the aspect ratio.
// Images that already fit are returned unchanged.
func FitWithin(img image.Image, maxW, maxH uint) image.Image {
	size := img.Bounds().Size()
	if uint(size.X) <= maxW && uint(size.Y) <= maxH {
		return img
	}
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
}

// ParseDate accepts YYYY-MM-DD; empty or invalid input gives nil
func ParseDate(s string) *time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// ParseBool treats "on" (html checkboxes) like "true"
func ParseBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "on" || s == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// ParseIDs skips anything that is not a positive integer and drops duplicates, keeping order
func ParseIDs(values []string) []uint64 {
	result := []uint64{}
	seen := map[uint64]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil || id == 0 || seen[id] {
				continue
			}
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
