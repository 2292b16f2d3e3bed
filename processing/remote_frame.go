package processing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"folio/assetstore"
	"folio/logging"
	"folio/metrics"
)

const validationTimeout = 10 * time.Second

// Validator checks that a derived URL is servable
type Validator interface {
	Validate(ctx context.Context, url string) bool
}

// HeadValidator issues a HEAD request with a hard timeout; any 2xx is valid
type HeadValidator struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHeadValidator() *HeadValidator {
	return &HeadValidator{Client: http.DefaultClient, Timeout: validationTimeout}
}

func (v *HeadValidator) Validate(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		logging.Debug("HEAD %s failed: %v", url, err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

type transformParam struct {
	key, value string
}

// frame at offset zero, bounded to 1280x720
var primaryFrame = []transformParam{{"so", "0"}, {"w", "1280"}, {"h", "720"}, {"c", "limit"}, {"q", "auto"}}

// tried once each after the primary one keeps failing
var alternativeFrames = [][]transformParam{
	{{"so", "0"}, {"w", "1280"}, {"h", "720"}, {"c", "fill"}, {"q", "auto"}},
	{{"so", "0"}, {"w", "960"}, {"h", "540"}, {"c", "limit"}, {"q", "auto"}},
	{{"so", "0"}, {"w", "640"}, {"c", "scale"}},
	{{"so", "0"}},
}

func frameURL(videoURL string, params []transformParam) (string, error) {
	u, err := assetstore.NewTransformURL(videoURL)
	if err != nil {
		return "", err
	}
	for _, p := range params {
		u.With(p.key, p.value)
	}
	return u.Format("jpg").String(), nil
}

// FrameURL derives the first-frame still URL of a stored video without validating it
func FrameURL(videoURL string) (string, error) {
	return frameURL(videoURL, primaryFrame)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type FrameGenerator struct {
	validator Validator
	delays    []time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewFrameGenerator(validator Validator) *FrameGenerator {
	return &FrameGenerator{
		validator: validator,
		delays:    []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second},
		sleep:     sleepContext,
	}
}

func (g *FrameGenerator) validate(ctx context.Context, url string) bool {
	ok := g.validator.Validate(ctx, url)
	status := metrics.StatusFailed
	if ok {
		status = metrics.StatusOK
	}
	metrics.FrameValidationsTotal.WithLabelValues(status).Inc()
	return ok
}

// GenerateValidatedFrameURL retries the primary frame URL while a fresh upload is
// being indexed, then tries every alternative once.
func (g *FrameGenerator) GenerateValidatedFrameURL(ctx context.Context, videoURL string) (string, error) {
	primary, err := FrameURL(videoURL)
	if err != nil {
		return "", err
	}
	for attempt, delay := range g.delays {
		if g.validate(ctx, primary) {
			return primary, nil
		}
		logging.Info("Poster frame not ready (attempt %d/%d), retrying in %v", attempt+1, len(g.delays), delay)
		if err = g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	for _, params := range alternativeFrames {
		alternative, err := frameURL(videoURL, params)
		if err != nil {
			return "", err
		}
		if g.validate(ctx, alternative) {
			logging.Info("Using alternative poster frame %s", alternative)
			return alternative, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrFrameUnavailable, videoURL)
}
