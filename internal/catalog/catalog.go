// Package catalog holds the collaborators the triage core consumes: the asset
// library, the deletion executor and the best-effort content fetcher.
package catalog

import (
	"context"
	"errors"
	"swipetriage/internal/models"
	"time"
)

var (
	ErrDeletionFailed = errors.New("deletion failed")
	ErrAssetNotFound  = errors.New("asset not found")
)

type AssetCatalog interface {
	// ListAssets enumerates the library. It may be slow and must not be
	// called on the interactive path.
	ListAssets(ctx context.Context, kinds []models.MediaType) ([]models.Asset, error)
}

type DeletionExecutor interface {
	// Delete removes every id or none of them.
	Delete(ctx context.Context, ids []string) error
}

type Quality int

const (
	QualityThumbnail Quality = iota
	QualityFull
)

func (q Quality) String() string {
	if q == QualityFull {
		return "full"
	}
	return "thumbnail"
}

func ParseQuality(s string) Quality {
	if s == "full" {
		return QualityFull
	}
	return QualityThumbnail
}

type Content struct {
	AssetID     string
	MIME        string
	Data        []byte
	Quality     Quality
	Placeholder bool
}

type ContentFetcher interface {
	// FetchBestEffort never fails: past the deadline or on any read error it
	// resolves to a placeholder.
	FetchBestEffort(ctx context.Context, asset models.Asset, quality Quality, deadline time.Duration) Content
}
