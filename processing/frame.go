package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"

	"folio/assetstore"
	"folio/logging"
	"folio/utils"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

const (
	FrameMaxWidth  = 1280
	FrameMaxHeight = 720
	frameQuality   = 85
)

var ErrFrameUnavailable = errors.New("processing: no poster frame available")

// Frame is an encoded still ready for upload
type Frame struct {
	Data   []byte
	Format string // "webp" or "jpeg"
	Width  int
	Height int
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, stderr.String())
	}
	return out, nil
}

// LocalFrameExtractor decodes the first frame of a video with ffmpeg
type LocalFrameExtractor struct {
	TempDir string
	FFmpeg  string
	run     commandRunner
}

func NewLocalFrameExtractor(tempDir string) *LocalFrameExtractor {
	return &LocalFrameExtractor{TempDir: tempDir, FFmpeg: "ffmpeg", run: runCommand}
}

// ExtractFrame writes the video to a temp file, grabs the frame at 0s, fits it
// within 1280x720 and encodes it as WebP (JPEG when libvips can't).
// The temp file is removed on every path.
func (e *LocalFrameExtractor) ExtractFrame(ctx context.Context, video []byte) (*Frame, error) {
	if len(video) == 0 {
		return nil, fmt.Errorf("%w: empty video", ErrFrameUnavailable)
	}
	tmp, err := os.CreateTemp(e.TempDir, "poster-*.video")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(video)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}

	out, err := e.run(ctx, e.FFmpeg, "-v", "error", "-ss", "0", "-i", tmp.Name(),
		"-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameUnavailable, err)
	}
	still, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: decode frame: %v", ErrFrameUnavailable, err)
	}
	fitted := utils.FitWithin(still, FrameMaxWidth, FrameMaxHeight)
	return encodeFrame(fitted)
}

func encodeFrame(img image.Image) (*Frame, error) {
	frame := &Frame{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	data, err := encodeWebp(img)
	if err == nil {
		frame.Data, frame.Format = data, "webp"
		return frame, nil
	}
	logging.Warn("WebP encoding of poster frame failed, falling back to JPEG: %v", err)
	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(frameQuality)); err != nil {
		return nil, err
	}
	frame.Data, frame.Format = buf.Bytes(), "jpeg"
	return frame, nil
}

func encodeWebp(img image.Image) ([]byte, error) {
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return nil, err
	}
	if err := assetstore.InitVips(); err != nil {
		return nil, err
	}
	ref, err := vips.NewImageFromBuffer(raw.Bytes())
	if err != nil {
		return nil, err
	}
	defer ref.Close()
	out, _, err := ref.ExportWebp(&vips.WebpExportParams{
		StripMetadata: true,
		Quality:       frameQuality,
	})
	return out, err
}
