// Package filter classifies assets against a triage filter. It is stateless
// apart from its shuffle source and never retains the slices it is given.
package filter

import (
	"math/rand"
	"sort"
	"swipetriage/internal/models"
	"sync"
	"time"
)

type EngineInterface interface {
	Matches(asset models.Asset, f models.Filter, today time.Time) bool
	UnprocessedCount(assets []models.Asset, f models.Filter, processed models.StringSet, today time.Time) int
	SelectUnprocessed(assets []models.Asset, f models.Filter, processed models.StringSet, today time.Time) []models.Asset
	Counts(assets []models.Asset, processed models.StringSet, today time.Time) map[string]int
}

type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine() EngineInterface {
	return &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (e *Engine) Matches(asset models.Asset, f models.Filter, today time.Time) bool {
	switch f.Kind {
	case models.FilterRandom:
		return true
	case models.FilterScreenshots:
		return asset.IsScreenshot
	case models.FilterOnThisDay:
		if asset.CreatedAt == nil {
			return false
		}
		c := asset.CreatedAt.In(today.Location())
		return c.Month() == today.Month() && c.Day() == today.Day() && c.Year() != today.Year()
	case models.FilterYear:
		if asset.CreatedAt == nil {
			return false
		}
		return asset.CreatedAt.In(today.Location()).Year() == f.Year
	}
	return false
}

func (e *Engine) UnprocessedCount(assets []models.Asset, f models.Filter, processed models.StringSet, today time.Time) int {
	n := 0
	for _, a := range assets {
		if !processed.Has(a.ID) && e.Matches(a, f, today) {
			n++
		}
	}
	return n
}

// SelectUnprocessed returns a freshly shuffled copy of the matching assets
// that are not yet processed. An empty result means the filter is exhausted.
func (e *Engine) SelectUnprocessed(assets []models.Asset, f models.Filter, processed models.StringSet, today time.Time) []models.Asset {
	out := make([]models.Asset, 0)
	for _, a := range assets {
		if !processed.Has(a.ID) && e.Matches(a, f, today) {
			out = append(out, a)
		}
	}

	e.mu.Lock()
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	e.mu.Unlock()

	return out
}

// Counts returns the unprocessed count for every filter worth offering:
// the fixed filters plus one year filter per year present in the library.
func (e *Engine) Counts(assets []models.Asset, processed models.StringSet, today time.Time) map[string]int {
	counts := map[string]int{
		models.RandomFilter().Key():      0,
		models.OnThisDayFilter().Key():   0,
		models.ScreenshotsFilter().Key(): 0,
	}
	for _, y := range Years(assets, today.Location()) {
		counts[models.YearFilter(y).Key()] = 0
	}
	for _, a := range assets {
		if processed.Has(a.ID) {
			continue
		}
		counts[models.RandomFilter().Key()]++
		if e.Matches(a, models.OnThisDayFilter(), today) {
			counts[models.OnThisDayFilter().Key()]++
		}
		if a.IsScreenshot {
			counts[models.ScreenshotsFilter().Key()]++
		}
		if a.CreatedAt != nil {
			counts[models.YearFilter(a.CreatedAt.In(today.Location()).Year()).Key()]++
		}
	}
	return counts
}

// Years lists the distinct creation years in the library, newest first.
func Years(assets []models.Asset, loc *time.Location) []int {
	seen := make(map[int]struct{})
	for _, a := range assets {
		if a.CreatedAt != nil {
			seen[a.CreatedAt.In(loc).Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
