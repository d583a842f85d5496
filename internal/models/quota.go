package models

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// QuotaState is the per-filter daily swipe allowance. RecordedSwipes is only
// kept on the global state and counts every swipe since the last reset; it
// drives the interstitial cadence and survives day rollover.
type QuotaState struct {
	Day                  string `json:"day"`
	SwipesUsedToday      int    `json:"swipes_used_today"`
	BonusSwipesRemaining int    `json:"bonus_swipes_remaining"`
	RecordedSwipes       int    `json:"recorded_swipes,omitempty"`
}

type Entitlement int

const (
	EntitlementUnsubscribed Entitlement = iota
	EntitlementSubscribed
	EntitlementTrial
	EntitlementExpired
	EntitlementCancelled
)

func (e Entitlement) String() string {
	switch e {
	case EntitlementSubscribed:
		return "subscribed"
	case EntitlementTrial:
		return "trial"
	case EntitlementExpired:
		return "expired"
	case EntitlementCancelled:
		return "cancelled"
	default:
		return "unsubscribed"
	}
}

// Unlimited reports whether the entitlement bypasses the daily quota.
func (e Entitlement) Unlimited() bool {
	return e == EntitlementSubscribed || e == EntitlementTrial
}

func ParseEntitlement(s string) (Entitlement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unsubscribed", "":
		return EntitlementUnsubscribed, nil
	case "subscribed":
		return EntitlementSubscribed, nil
	case "trial":
		return EntitlementTrial, nil
	case "expired":
		return EntitlementExpired, nil
	case "cancelled", "canceled":
		return EntitlementCancelled, nil
	}
	return EntitlementUnsubscribed, fmt.Errorf("unknown entitlement %q", s)
}

func (e Entitlement) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *Entitlement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEntitlement(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
