package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/jaennil/guide_helper/backend/maps/internal/fetch"
	"github.com/jaennil/guide_helper/backend/maps/internal/imaging"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/blob"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/disk"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/memory"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/settings"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
	"github.com/jaennil/guide_helper/backend/maps/pkg/metrics"
)

// MaxDiskCapacity bounds the number of disk cache slots.
const MaxDiskCapacity = 1000000

var ErrInvalidCapacity = errors.New("invalid cache capacity")

// Paths locates the persisted viewer state.
type Paths struct {
	Index     string
	Config    string
	Favorites string
	Cache     string
}

func NewPaths(dataDir string) Paths {
	return Paths{
		Index:     filepath.Join(dataDir, "disk.dat"),
		Config:    filepath.Join(dataDir, "config.dat"),
		Favorites: filepath.Join(dataDir, "favorite.dat"),
		Cache:     filepath.Join(dataDir, "cache"),
	}
}

type ViewerOptions struct {
	Paths      Paths
	MemorySize int
	Defaults   settings.Config

	// TileTimeout bounds each tile resolution; zero leaves only the
	// caller's deadline.
	TileTimeout time.Duration
}

// Viewer is the query surface used by the API layer.
type Viewer struct {
	paths    Paths
	store    *CacheStore
	resolver *Resolver
	logger   logger.Logger

	tileTimeout time.Duration

	// guards cfg and favorites; the caches are guarded by store
	mu        sync.RWMutex
	cfg       settings.Config
	favorites settings.Favorites
}

// LoadState reads config.dat, favorite.dat and disk.dat. Unreadable files are
// logged and replaced by defaults.
func LoadState(opts ViewerOptions, l logger.Logger) (settings.Config, settings.Favorites, *disk.Index) {
	cfg, err := settings.LoadConfig(opts.Paths.Config, opts.Defaults)
	if err != nil {
		l.Warn("failed to load config, using defaults", "path", opts.Paths.Config, "error", err)
	}

	favs, err := settings.LoadFavorites(opts.Paths.Favorites)
	if err != nil {
		l.Warn("failed to load favorites", "path", opts.Paths.Favorites, "error", err)
	}

	if c := cfg.DiskCacheCapacity; c < 0 || c > MaxDiskCapacity {
		cfg.DiskCacheCapacity = min(max(c, 0), MaxDiskCapacity)
		l.Warn("disk cache capacity out of range, clamping",
			"capacity", c,
			"clamped", cfg.DiskCacheCapacity,
		)
	}

	index, err := disk.Load(opts.Paths.Index, cfg.DiskCacheCapacity)
	if err != nil {
		l.Warn("failed to load disk cache index, starting empty", "path", opts.Paths.Index, "error", err)
	}

	l.Info("viewer state loaded",
		"disk_capacity", index.Capacity(),
		"disk_entries", index.Len(),
		"effects", cfg.EffectsEnabled,
	)
	return cfg, favs, index
}

// NewViewer wires the caches around blobs using the state persisted under
// opts.Paths.
func NewViewer(opts ViewerOptions, blobs blob.Store, fetcher fetch.Fetcher, decoder imaging.Decoder, l logger.Logger) *Viewer {
	cfg, favs, index := LoadState(opts, l)

	size := opts.MemorySize
	if size <= 0 {
		size = memory.DefaultSize
	}

	store := NewCacheStore(memory.NewRing(size), index, blobs)

	metrics.DiskCacheCapacity.Set(float64(index.Capacity()))
	metrics.DiskCacheEntries.Set(float64(index.Len()))

	return &Viewer{
		paths:     opts.Paths,
		store:     store,
		resolver:  NewResolver(store, fetcher, decoder, l),
		logger:    l,
		cfg:       cfg,
		favorites: favs,

		tileTimeout: opts.TileTimeout,
	}
}

func (v *Viewer) tileContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.tileTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, v.tileTimeout)
}

func (v *Viewer) Resolve(ctx context.Context, x, y, z int32, p tile.Provider) image.Image {
	return v.ResolveWithSource(ctx, x, y, z, p).Image
}

func (v *Viewer) ResolveWithSource(ctx context.Context, x, y, z int32, p tile.Provider) Result {
	ctx, cancel := v.tileContext(ctx)
	defer cancel()
	return v.resolver.ResolveWithSource(ctx, tile.NewKey(x, y, z, p))
}

// Neighborhood resolves the 2x2 block ending at (x, y) in row-major order.
func (v *Viewer) Neighborhood(ctx context.Context, x, y, z int32, p tile.Provider) [4]image.Image {
	var images [4]image.Image
	for i, k := range tile.Neighborhood(x, y, z, p) {
		tileCtx, cancel := v.tileContext(ctx)
		images[i] = v.resolver.Resolve(tileCtx, k)
		cancel()
	}
	return images
}

// SetCacheCapacity resizes the disk cache and deletes the blobs of slots
// that no longer exist.
func (v *Viewer) SetCacheCapacity(ctx context.Context, capacity int) error {
	if capacity < 0 || capacity > MaxDiskCapacity {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidCapacity, capacity, MaxDiskCapacity)
	}

	v.store.mu.Lock()
	removed := v.store.index.Resize(capacity)
	var errs []error
	for _, slot := range removed {
		if err := v.store.blobs.Delete(ctx, slot); err != nil && !errors.Is(err, blob.ErrNotFound) {
			metrics.StorageErrors.WithLabelValues("delete").Inc()
			errs = append(errs, fmt.Errorf("slot %d: %w", slot, err))
		}
	}
	entries := v.store.index.Len()
	v.store.mu.Unlock()

	v.mu.Lock()
	v.cfg.DiskCacheCapacity = capacity
	v.mu.Unlock()

	metrics.DiskCacheCapacity.Set(float64(capacity))
	metrics.DiskCacheEntries.Set(float64(entries))

	v.logger.Info("disk cache resized", "capacity", capacity, "removed_slots", len(removed), "entries", entries)

	if len(errs) > 0 {
		return fmt.Errorf("%w: failed to delete %d blobs: %w", ErrStorage, len(errs), errors.Join(errs...))
	}
	return nil
}

func (v *Viewer) Config() settings.Config {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cfg
}

// SetConfig applies cfg; a capacity change resizes the disk cache.
func (v *Viewer) SetConfig(ctx context.Context, cfg settings.Config) error {
	if cfg.DiskCacheCapacity != v.Config().DiskCacheCapacity {
		if err := v.SetCacheCapacity(ctx, cfg.DiskCacheCapacity); err != nil {
			return err
		}
	}

	v.mu.Lock()
	v.cfg = cfg
	v.mu.Unlock()
	return nil
}

func (v *Viewer) Favorites() settings.Favorites {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.favorites
}

func (v *Viewer) SetFavorite(slot int, fav settings.Favorite) (settings.Favorite, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.favorites.Set(slot, fav); err != nil {
		return settings.Favorite{}, err
	}
	return v.favorites.Get(slot)
}

func (v *Viewer) ClearFavorite(slot int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.favorites.Clear(slot)
}

func (v *Viewer) Stats() Stats {
	return v.store.Stats()
}

// DiskLookup reports whether tile (x, y, z, p) is in the disk cache.
func (v *Viewer) DiskLookup(x, y, z int32, p tile.Provider) (int, bool) {
	return v.store.DiskLookup(tile.NewKey(x, y, z, p))
}

// Shutdown persists the index, config and favorites and closes the blob
// store. Every step runs even when an earlier one fails.
func (v *Viewer) Shutdown(ctx context.Context) error {
	v.store.mu.Lock()
	indexErr := v.store.index.Save(v.paths.Index)
	closeErr := v.store.blobs.Close()
	v.store.mu.Unlock()

	v.mu.RLock()
	cfg := v.cfg
	favs := v.favorites
	v.mu.RUnlock()

	err := errors.Join(
		wrapErr("save disk cache index", indexErr),
		wrapErr("save config", settings.SaveConfig(v.paths.Config, cfg)),
		wrapErr("save favorites", settings.SaveFavorites(v.paths.Favorites, &favs)),
		wrapErr("close blob store", closeErr),
	)
	if err != nil {
		v.logger.Error("viewer shutdown incomplete", "error", err)
		return err
	}

	v.logger.Info("viewer state saved", "dir", filepath.Dir(v.paths.Index))
	return nil
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
