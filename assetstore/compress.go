package assetstore

import (
	"fmt"
	"net/http"

	"folio/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

const (
	// CompressThreshold is the practical upload ceiling of the asset store
	CompressThreshold = 10 * 1024 * 1024
	// CompressTarget is what a re-encode aims to stay under
	CompressTarget = CompressThreshold * 95 / 100
	// shrinkThreshold: only inputs above this get their dimensions reduced
	shrinkThreshold = 20 * 1024 * 1024
	shrinkScale     = 0.95

	jpegQuality = 95
	webpQuality = 92
	pngZlib     = 0
)

// Image families we re-encode into the same format; everything else becomes JPEG
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWEBP = "webp"
	FormatGIF  = "gif"
	FormatNone = ""
)

// SniffFormat returns the image family of a buffer
func SniffFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return FormatJPEG
	case "image/png":
		return FormatPNG
	case "image/webp":
		return FormatWEBP
	case "image/gif":
		return FormatGIF
	}
	return FormatNone
}

// Compress re-encodes images above CompressThreshold so they fit the upload
// ceiling while staying visually close to the source. Smaller inputs are
// returned as they are. Any failure returns the original buffer.
func Compress(data []byte) []byte {
	if len(data) <= CompressThreshold {
		return data
	}
	out, err := reencode(data)
	if err != nil {
		logging.Warn("Compression of %d bytes failed, uploading the original: %v", len(data), err)
		return data
	}
	if len(out) >= len(data) {
		logging.Debug("Re-encode did not shrink the image (%d -> %d bytes), keeping the original", len(data), len(out))
		return data
	}
	if len(out) > CompressTarget {
		logging.Warn("Compressed image is still %d bytes, the upload may be rejected", len(out))
	}
	logging.Info("Compressed image from %d to %d bytes", len(data), len(out))
	return out
}

func reencode(data []byte) (out []byte, err error) {
	if err = InitVips(); err != nil {
		return nil, err
	}
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer ref.Close()

	if len(data) > shrinkThreshold {
		if err = ref.Resize(shrinkScale, vips.KernelLanczos3); err != nil {
			return nil, fmt.Errorf("resize: %w", err)
		}
	}

	switch SniffFormat(data) {
	case FormatPNG:
		out, _, err = ref.ExportPng(&vips.PngExportParams{
			StripMetadata: true,
			Compression:   pngZlib,
			Palette:       false,
		})
	case FormatWEBP:
		out, _, err = ref.ExportWebp(&vips.WebpExportParams{
			StripMetadata:   true,
			Quality:         webpQuality,
			ReductionEffort: 0,
		})
	default:
		out, _, err = ref.ExportJpeg(&vips.JpegExportParams{
			StripMetadata:  true,
			Quality:        jpegQuality,
			Interlace:      true,
			OptimizeCoding: true,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return out, nil
}
