package models

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

type FilterKind int

const (
	FilterRandom FilterKind = iota
	FilterOnThisDay
	FilterScreenshots
	FilterYear
)

const (
	keyRandom      = "random"
	keyOnThisDay   = "on_this_day"
	keyScreenshots = "screenshots"
	keyYearPrefix  = "year_"
)

// Filter selects a subset of the library. It is comparable and can be used
// directly as a map key; Key gives the stable string form used in storage.
type Filter struct {
	Kind FilterKind
	Year int
}

func RandomFilter() Filter      { return Filter{Kind: FilterRandom} }
func OnThisDayFilter() Filter   { return Filter{Kind: FilterOnThisDay} }
func ScreenshotsFilter() Filter { return Filter{Kind: FilterScreenshots} }
func YearFilter(y int) Filter   { return Filter{Kind: FilterYear, Year: y} }

func (f Filter) Key() string {
	switch f.Kind {
	case FilterOnThisDay:
		return keyOnThisDay
	case FilterScreenshots:
		return keyScreenshots
	case FilterYear:
		return fmt.Sprintf("%s%d", keyYearPrefix, f.Year)
	default:
		return keyRandom
	}
}

func (f Filter) String() string {
	return f.Key()
}

func (f Filter) IsRandom() bool {
	return f.Kind == FilterRandom
}

func ParseFilter(key string) (Filter, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case keyRandom, "":
		return RandomFilter(), nil
	case keyOnThisDay:
		return OnThisDayFilter(), nil
	case keyScreenshots:
		return ScreenshotsFilter(), nil
	}
	if strings.HasPrefix(key, keyYearPrefix) {
		year, err := cast.ToIntE(strings.TrimPrefix(key, keyYearPrefix))
		if err != nil || year <= 0 {
			return Filter{}, fmt.Errorf("invalid year filter %q", key)
		}
		return YearFilter(year), nil
	}
	return Filter{}, fmt.Errorf("unknown filter %q", key)
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Key())
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	parsed, err := ParseFilter(key)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
