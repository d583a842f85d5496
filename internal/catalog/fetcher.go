package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"swipetriage/internal/models"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 2 * time.Second
	defaultMaxBytes     = 32 << 20
	thumbnailMaxBytes   = 4 << 20
	placeholderMIME     = "image/svg+xml"
)

var placeholderSVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64"><rect width="64" height="64" fill="#ccc"/></svg>`)

// FileFetcher reads asset bytes from disk and caches them. The content is
// passed through as-is: thumbnails are the original file when it is small
// enough, a placeholder otherwise. Concurrent fetches of the same asset and
// quality share one read, and a read that outlives its caller still fills
// the cache.
type FileFetcher struct {
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	timeout  time.Duration
	maxBytes int64
	reads    singleflight.Group
}

func NewFileFetcher(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) *FileFetcher {
	timeout := conf.Content.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxBytes := conf.Content.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &FileFetcher{cache: cache, logger: logger, timeout: timeout, maxBytes: maxBytes}
}

func cacheKey(id string, q Quality) string {
	return "content:" + q.String() + ":" + id
}

func Placeholder(id string, q Quality) Content {
	return Content{AssetID: id, MIME: placeholderMIME, Data: placeholderSVG, Quality: q, Placeholder: true}
}

func (f *FileFetcher) limit(q Quality) int64 {
	if q == QualityThumbnail && f.maxBytes > thumbnailMaxBytes {
		return thumbnailMaxBytes
	}
	return f.maxBytes
}

func (f *FileFetcher) FetchBestEffort(ctx context.Context, asset models.Asset, quality Quality, deadline time.Duration) Content {
	key := cacheKey(asset.ID, quality)
	if data, ok := f.cache.Get(key); ok {
		return Content{AssetID: asset.ID, MIME: mimetype.Detect(data).String(), Data: data, Quality: quality}
	}

	if ctx.Err() != nil {
		return Placeholder(asset.ID, quality)
	}
	if deadline <= 0 || deadline > f.timeout {
		deadline = f.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	done := f.reads.DoChan(key, func() (interface{}, error) {
		data, err := readLimited(asset.Path, f.limit(quality))
		if err != nil {
			return nil, err
		}
		f.cache.Set(key, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		f.logger.Debugf(providers.TypeLibrary, "Fetch of %s timed out, using placeholder", asset.ID)
		return Placeholder(asset.ID, quality)
	case r := <-done:
		if r.Err != nil {
			f.logger.Debugf(providers.TypeLibrary, "Fetch of %s failed, using placeholder: %s", asset.ID, r.Err)
			return Placeholder(asset.ID, quality)
		}
		data := r.Val.([]byte)
		return Content{AssetID: asset.ID, MIME: mimetype.Detect(data).String(), Data: data, Quality: quality}
	}
}

func readLimited(path string, limit int64) ([]byte, error) {
	if path == "" {
		return nil, ErrAssetNotFound
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("asset larger than %d bytes", limit)
	}
	return data, nil
}
