package batch

import (
	"errors"
	"swipetriage/internal/models"

	json "github.com/goccy/go-json"
)

type State int

const (
	StateLoading State = iota
	StateEmpty
	StateSwiping
	StateReviewing
	StateConfirmingDeletion
	StateContinuing
	StateCheckpoint
	StateCompleted
)

var stateNames = map[State]string{
	StateLoading:            "loading",
	StateEmpty:              "empty",
	StateSwiping:            "swiping",
	StateReviewing:          "reviewing",
	StateConfirmingDeletion: "confirming_deletion",
	StateContinuing:         "continuing",
	StateCheckpoint:         "checkpoint",
	StateCompleted:          "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

var (
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrBusy         = errors.New("deletion in progress")
	ErrNoDecisions  = errors.New("no decisions to undo")
	ErrUnknownAsset = errors.New("asset is not in the current batch")
)

// SwipeResult reports what a swipe did. A swipe refused by the quota is not
// an error: Blocked is set and the caller shows the paywall.
type SwipeResult struct {
	Accepted         bool  `json:"accepted"`
	Blocked          bool  `json:"blocked"`
	ShowInterstitial bool  `json:"show_interstitial"`
	State            State `json:"state"`
}

type DeletionSummary struct {
	Deleted    int   `json:"deleted"`
	Kept       int   `json:"kept"`
	SavedBytes int64 `json:"saved_bytes"`
}

type ConfirmResult struct {
	Summary DeletionSummary `json:"summary"`
	State   State           `json:"state"`
}

type ProgressView struct {
	TotalProcessed         int   `json:"total_processed"`
	FilterProcessed        int   `json:"filter_processed"`
	TotalDeleted           int   `json:"total_deleted"`
	TotalStorageSavedBytes int64 `json:"total_storage_saved_bytes"`
	ActiveDays             int   `json:"active_days"`
}

// View is a read-only copy of everything the presentation layer renders.
type View struct {
	State          State                  `json:"state"`
	Filter         models.Filter          `json:"filter"`
	BatchIndex     int                    `json:"batch_index"`
	Cursor         int                    `json:"cursor"`
	Current        *models.Asset          `json:"current,omitempty"`
	Assets         []models.Asset         `json:"assets"`
	Decisions      []models.SwipeDecision `json:"decisions"`
	PendingDeletes []string               `json:"pending_deletes"`
	PoolSize       int                    `json:"pool_size"`
	Remaining      int                    `json:"remaining"`
	Progress       ProgressView           `json:"progress"`
	Entitlement    models.Entitlement     `json:"entitlement"`
	PaywallPrompt  bool                   `json:"paywall_prompt"`
	LastSummary    *DeletionSummary       `json:"last_summary,omitempty"`
	Busy           bool                   `json:"busy"`
}
