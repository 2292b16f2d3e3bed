package assetstore

import (
	"context"
	"errors"
	"fmt"

	"folio/logging"
	"folio/metrics"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"golang.org/x/sync/errgroup"
)

var ErrAssetNotFound = errors.New("assetstore: asset not found")

// DeleteResult is the outcome of one best-effort deletion
type DeleteResult struct {
	PublicID string
	Deleted  bool
	Err      error
}

// DeleteReport collects a batch of deletions. Nothing in it is fatal.
type DeleteReport struct {
	Results []DeleteResult
}

func (r DeleteReport) Failed() []DeleteResult {
	failed := []DeleteResult{}
	for _, res := range r.Results {
		if !res.Deleted {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r DeleteReport) DeletedCount() int {
	return len(r.Results) - len(r.Failed())
}

// Delete tries the id as a video and then as an image, since a stored URL
// does not always tell which one it is. Failures are logged, never returned.
func (g *Gateway) Delete(ctx context.Context, publicID string) DeleteResult {
	result := DeleteResult{PublicID: publicID}
	var errs []error
	for _, resource := range []string{ResourceVideo, ResourceImage} {
		res, err := g.api.Destroy(ctx, uploader.DestroyParams{
			PublicID:     publicID,
			ResourceType: resource,
			Invalidate:   api.Bool(true),
		})
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", resource, err))
		case res == nil:
			errs = append(errs, fmt.Errorf("%s: empty response", resource))
		case res.Error.Message != "":
			errs = append(errs, fmt.Errorf("%s: %s", resource, res.Error.Message))
		case res.Result == "ok":
			result.Deleted = true
		}
	}
	if !result.Deleted {
		result.Err = errors.Join(errs...)
		if result.Err == nil {
			result.Err = ErrAssetNotFound
		}
		logging.Warn("Could not delete asset %s: %v", publicID, result.Err)
	}
	metrics.AssetDeletesTotal.WithLabelValues(metrics.Status(result.Err)).Inc()
	return result
}

// DeleteAll deletes every id concurrently and waits for all of them. Empty and
// duplicate ids are skipped.
func (g *Gateway) DeleteAll(ctx context.Context, publicIDs []string) DeleteReport {
	unique := make([]string, 0, len(publicIDs))
	seen := map[string]bool{}
	for _, id := range publicIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	results := make([]DeleteResult, len(unique))
	var group errgroup.Group
	for i, id := range unique {
		i, id := i, id
		group.Go(func() error {
			results[i] = g.Delete(ctx, id)
			return nil
		})
	}
	_ = group.Wait()
	return DeleteReport{Results: results}
}

// DeleteURLs resolves the URLs first; URLs without a public id are skipped.
func (g *Gateway) DeleteURLs(ctx context.Context, urls ...string) DeleteReport {
	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		if id, ok := ResolvePublicID(u); ok {
			ids = append(ids, id)
		} else if u != "" {
			logging.Debug("No public id in %q, nothing to delete", u)
		}
	}
	return g.DeleteAll(ctx, ids)
}
