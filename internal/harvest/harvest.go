// Package harvest downloads every segment of a DASH manifest to disk.
package harvest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"mpdharvest/internal/dash"
	"mpdharvest/internal/logger"
	"mpdharvest/internal/models"
	"mpdharvest/internal/storage"

	"golang.org/x/sync/errgroup"
)

// ManifestFile is the name the manifest is stored under in the output directory.
const ManifestFile = "manifest.mpd"

// ManifestFetcher retrieves a manifest and reports where it was served from.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, manifestURL string) ([]byte, string, error)
}

// SegmentFetcher retrieves the bytes of one segment.
type SegmentFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Summary counts what happened to the segments of one run.
type Summary struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
	// Foreign counts URLs outside the base URL, which have no destination.
	Foreign int
}

// Harvester fetches a manifest, resolves it and stores all its segments.
type Harvester struct {
	manifests ManifestFetcher
	segments  SegmentFetcher
	store     *storage.Store
	logger    logger.Logger
	workers   int
}

// New creates a Harvester running up to workers segment downloads at once.
func New(manifests ManifestFetcher, segments SegmentFetcher, store *storage.Store, log logger.Logger, workers int) *Harvester {
	if workers < 1 {
		workers = 1
	}
	return &Harvester{
		manifests: manifests,
		segments:  segments,
		store:     store,
		logger:    log,
		workers:   workers,
	}
}

// Run harvests the manifest at manifestURL. The manifest itself is stored
// as ManifestFile. Failing segments are logged and counted; only a manifest
// that cannot be fetched, stored or resolved is an error.
func (h *Harvester) Run(ctx context.Context, manifestURL string) (*Summary, error) {
	data, finalURL, err := h.manifests.FetchManifest(ctx, manifestURL)
	if err != nil {
		return nil, err
	}
	if err := h.store.Save(filepath.Join(h.store.Root(), ManifestFile), data); err != nil {
		return nil, err
	}

	res, err := dash.GetFragmentURLs(data, finalURL, h.logger)
	if err != nil {
		return nil, fmt.Errorf("fragment urls not available: %w", err)
	}
	h.logger.Infof("Resolved %d segment URLs against %s", len(res.Segments), res.BaseURL)

	return h.Download(ctx, res.BaseURL, res.Segments)
}

// Download stores each segment below the output directory, skipping those
// already present. Segments are fetched in parallel, so completion order
// does not follow the order of segments.
func (h *Harvester) Download(ctx context.Context, baseURL string, segments []models.Segment) (*Summary, error) {
	var downloaded, skipped, failed, foreign atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)

	// URLs differing only in their query share a destination.
	seen := make(map[string]struct{}, len(segments))

	for idx, seg := range segments {
		if gctx.Err() != nil {
			break
		}
		path, ok := h.store.PathFor(baseURL, seg.URL)
		if !ok {
			h.logger.Warnf("Segment %d url %s does not start with base url %s", idx, seg.URL, baseURL)
			foreign.Add(1)
			continue
		}
		if _, dup := seen[path]; dup {
			h.logger.Infof("Segment %d url %s path %s already scheduled, skip", idx, seg.URL, path)
			skipped.Add(1)
			continue
		}
		seen[path] = struct{}{}

		idx, seg := idx, seg
		g.Go(func() error {
			exists, err := h.store.Exists(path)
			if err != nil {
				h.logger.Errorf("Segment %d could not check %s: %v", idx, path, err)
				failed.Add(1)
				return nil
			}
			if exists {
				h.logger.Infof("Segment %d url %s path %s exists, skip", idx, seg.URL, path)
				skipped.Add(1)
				return nil
			}

			data, err := h.segments.Download(gctx, seg.URL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				h.logger.Errorf("Segment %d download failed: %v", idx, err)
				failed.Add(1)
				return nil
			}
			if err := h.store.Save(path, data); err != nil {
				h.logger.Errorf("Segment %d: %v", idx, err)
				failed.Add(1)
				return nil
			}
			h.logger.Infof("Downloaded url %s", seg.URL)
			downloaded.Add(1)
			return nil
		})
	}

	err := g.Wait()
	summary := &Summary{
		Total:      len(segments),
		Downloaded: int(downloaded.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
		Foreign:    int(foreign.Load()),
	}
	if err != nil {
		return summary, err
	}
	return summary, ctx.Err()
}
