package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"swipetriage/internal/models"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

const defaultScanWorkers = 8

var screenshotMarkers = []string{"screenshot", "screen shot", "screen_shot", "scr_"}

// LocalCatalog exposes a directory tree as the asset library. The asset id is
// the slash-separated path relative to the root, which keeps ids stable across
// restarts.
type LocalCatalog struct {
	root     string
	trashDir string
	workers  int
	logger   providers.Logger
}

func NewLocalCatalog(conf *structures.Config, logger providers.Logger) *LocalCatalog {
	workers := conf.Library.ScanWorkers
	if workers <= 0 {
		workers = defaultScanWorkers
	}
	return &LocalCatalog{
		root:     filepath.Clean(conf.Library.Root),
		trashDir: filepath.Clean(conf.Library.TrashDir),
		workers:  workers,
		logger:   logger,
	}
}

func (c *LocalCatalog) ListAssets(ctx context.Context, kinds []models.MediaType) ([]models.Asset, error) {
	var paths []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.root {
				return err
			}
			c.logger.Warnf(providers.TypeLibrary, "Skipping %s: %s", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != c.root && (path == c.trashDir || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), ".") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library: %w", err)
	}

	found := make([]*models.Asset, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			asset, ok := c.classify(path)
			if ok && wanted(asset.MediaType, kinds) {
				found[i] = &asset
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(found))
	for _, a := range found {
		if a != nil {
			assets = append(assets, *a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	c.logger.Debugf(providers.TypeLibrary, "Scanned %d files, %d assets", len(paths), len(assets))
	return assets, nil
}

func (c *LocalCatalog) classify(path string) (models.Asset, bool) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		c.logger.Warnf(providers.TypeLibrary, "Cannot detect type of %s: %s", path, err)
		return models.Asset{}, false
	}
	var kind models.MediaType
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		kind = models.MediaPhoto
	case strings.HasPrefix(mtype.String(), "video/"):
		kind = models.MediaVideo
	default:
		return models.Asset{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		c.logger.Warnf(providers.TypeLibrary, "Cannot stat %s: %s", path, err)
		return models.Asset{}, false
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return models.Asset{}, false
	}

	created := info.ModTime()
	size := info.Size()
	return models.Asset{
		ID:             filepath.ToSlash(rel),
		MediaType:      kind,
		CreatedAt:      &created,
		IsScreenshot:   isScreenshot(info.Name()),
		EstimatedBytes: &size,
		Path:           path,
	}, true
}

// Resolve maps an asset id back to a file inside the library root.
func (c *LocalCatalog) Resolve(id string) (string, error) {
	path := filepath.Join(c.root, filepath.FromSlash(id))
	rel, err := filepath.Rel(c.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrAssetNotFound, id)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrAssetNotFound, id)
	}
	return path, nil
}

func isScreenshot(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range screenshotMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func wanted(kind models.MediaType, kinds []models.MediaType) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// MediaKinds parses library.mediaKinds; an empty list means every kind.
func MediaKinds(conf *structures.Config) ([]models.MediaType, error) {
	kinds := make([]models.MediaType, 0, len(conf.Library.MediaKinds))
	for _, s := range conf.Library.MediaKinds {
		k, err := models.ParseMediaType(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
