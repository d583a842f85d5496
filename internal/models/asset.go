package models

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type MediaType int

const (
	MediaPhoto MediaType = iota
	MediaVideo
)

func (m MediaType) String() string {
	switch m {
	case MediaVideo:
		return "video"
	default:
		return "photo"
	}
}

func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "image":
		return MediaPhoto, nil
	case "video":
		return MediaVideo, nil
	}
	return MediaPhoto, fmt.Errorf("unknown media type %q", s)
}

func (m MediaType) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MediaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMediaType(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Asset is a single photo or video as reported by the catalog. The triage
// engine never mutates it; LocationName is filled in by an optional geocoder
// and nothing depends on it being present.
type Asset struct {
	ID             string     `json:"id"`
	MediaType      MediaType  `json:"media_type"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Location       *GeoPoint  `json:"location,omitempty"`
	LocationName   string     `json:"location_name,omitempty"`
	IsScreenshot   bool       `json:"is_screenshot"`
	EstimatedBytes *int64     `json:"estimated_bytes,omitempty"`
	Path           string     `json:"path,omitempty"`
}

// Size returns the estimated size in bytes, or 0 when unknown.
func (a Asset) Size() int64 {
	if a.EstimatedBytes == nil || *a.EstimatedBytes < 0 {
		return 0
	}
	return *a.EstimatedBytes
}

// Year returns the creation year, false when the creation time is unknown.
func (a Asset) Year() (int, bool) {
	if a.CreatedAt == nil {
		return 0, false
	}
	return a.CreatedAt.Year(), true
}
