package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/jaennil/guide_helper/backend/maps/internal/fetch"
	"github.com/jaennil/guide_helper/backend/maps/internal/imaging"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/blob"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
	"github.com/jaennil/guide_helper/backend/maps/pkg/metrics"
	"github.com/jaennil/guide_helper/backend/maps/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Source names the tier that produced a resolved tile.
type Source int

const (
	SourceMemory Source = iota
	SourceDisk
	SourceNetwork
	SourcePlaceholder
)

func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceDisk:
		return "disk"
	case SourceNetwork:
		return "network"
	case SourcePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

type Result struct {
	Image  image.Image
	Source Source
}

// Resolver finds the image of a tile in memory, then on disk, then upstream,
// and falls back to a placeholder. It never fails.
type Resolver struct {
	store   *CacheStore
	fetcher fetch.Fetcher
	decoder imaging.Decoder
	logger  logger.Logger
	tracer  trace.Tracer
}

func NewResolver(store *CacheStore, fetcher fetch.Fetcher, decoder imaging.Decoder, l logger.Logger) *Resolver {
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		decoder: decoder,
		logger:  l,
		tracer:  telemetry.Tracer(),
	}
}

// Resolve returns a displayable image for k.
func (r *Resolver) Resolve(ctx context.Context, k tile.Key) image.Image {
	return r.ResolveWithSource(ctx, k).Image
}

func (r *Resolver) ResolveWithSource(ctx context.Context, k tile.Key) Result {
	ctx, span := r.tracer.Start(ctx, "tile.resolve", trace.WithAttributes(
		attribute.String("tile.provider", k.Provider.String()),
		attribute.Int("tile.x", int(k.X)),
		attribute.Int("tile.y", int(k.Y)),
		attribute.Int("tile.z", int(k.Z)),
	))
	defer span.End()

	metrics.TileRequests.Inc()

	res := r.resolve(ctx, k)

	span.SetAttributes(attribute.String("tile.source", res.Source.String()))
	metrics.TileResolutions.WithLabelValues(res.Source.String()).Inc()

	return res
}

// resolve holds the store lock while it scans or writes the caches. The
// upstream fetch runs unlocked, so cache hits never wait on the network.
func (r *Resolver) resolve(ctx context.Context, k tile.Key) Result {
	if err := k.Validate(); err != nil {
		r.logger.Warn("refusing to resolve invalid tile", "tile", k.String(), "error", err)
		return Result{Image: imaging.Placeholder(), Source: SourcePlaceholder}
	}

	if res, ok := r.fromCache(ctx, k); ok {
		return res
	}

	data, img, fetchErr := r.fromNetwork(ctx, k)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// a concurrent resolution of k may have finished first
	if cached, ok := r.store.memory.Get(k); ok {
		return Result{Image: cached, Source: SourceMemory}
	}

	if fetchErr != nil {
		r.logger.Info("tile not available, using placeholder", "tile", k.String(), "error", fetchErr)
		placeholder := imaging.Placeholder()
		r.store.memory.Put(k, placeholder)
		return Result{Image: placeholder, Source: SourcePlaceholder}
	}

	if _, ok := r.store.index.Lookup(k); !ok {
		r.saveDisk(ctx, k, data)
	}
	r.store.memory.Put(k, img)
	return Result{Image: img, Source: SourceNetwork}
}

func (r *Resolver) fromCache(ctx context.Context, k tile.Key) (Result, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if img, ok := r.store.memory.Get(k); ok {
		r.logger.Debug("memory cache hit", "tile", k.String())
		return Result{Image: img, Source: SourceMemory}, true
	}

	img, err := r.fromDisk(ctx, k)
	if err == nil {
		r.logger.Debug("disk cache hit", "tile", k.String())
		r.store.memory.Put(k, img)
		return Result{Image: img, Source: SourceDisk}, true
	}
	if !errors.Is(err, errDiskMiss) {
		// the slot is kept; it will be retried and eventually overwritten
		r.logger.Warn("disk cache entry unusable, falling back to network", "tile", k.String(), "error", err)
	}
	return Result{}, false
}

var errDiskMiss = errors.New("disk cache miss")

func (r *Resolver) fromDisk(ctx context.Context, k tile.Key) (image.Image, error) {
	slot, ok := r.store.index.Lookup(k)
	if !ok {
		return nil, errDiskMiss
	}

	data, err := r.store.blobs.Get(ctx, slot)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			metrics.StorageErrors.WithLabelValues("read").Inc()
		}
		return nil, fmt.Errorf("%w: read slot %d: %w", ErrStorage, slot, err)
	}

	img, err := r.decoder.Decode(data)
	if err != nil {
		metrics.DecodeErrors.WithLabelValues("disk").Inc()
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return img, nil
}

func (r *Resolver) fromNetwork(ctx context.Context, k tile.Key) ([]byte, image.Image, error) {
	shard := 0
	if k.Provider.Balanced() {
		shard = r.store.balancer.Next()
	}

	req, err := tile.Encode(k, shard)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Debug("fetching tile", "tile", k.String(), "url", req.URL)

	start := time.Now()
	data, err := r.fetcher.Fetch(ctx, req.URL)
	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(k.Provider.String(), "error").Inc()
		return nil, nil, err
	}
	metrics.UpstreamRequests.WithLabelValues(k.Provider.String(), "ok").Inc()

	img, err := r.decoder.Decode(data)
	if err != nil {
		metrics.DecodeErrors.WithLabelValues("network").Inc()
		return nil, nil, err
	}
	return data, img, nil
}

// saveDisk records a freshly fetched tile in the disk cache. Failures leave
// the tile usable from memory only. The store lock must be held.
func (r *Resolver) saveDisk(ctx context.Context, k tile.Key, data []byte) {
	slot, ok := r.store.index.Insert(k)
	if !ok {
		return
	}

	if err := r.store.blobs.Put(ctx, slot, data); err != nil {
		r.store.index.Remove(slot)
		metrics.StorageErrors.WithLabelValues("write").Inc()
		r.logger.Warn("failed to write disk cache entry", "tile", k.String(), "slot", slot, "error", err)
		return
	}

	metrics.DiskCacheEntries.Set(float64(r.store.index.Len()))
	r.logger.Debug("stored tile on disk", "tile", k.String(), "slot", slot, "size", len(data))
}
