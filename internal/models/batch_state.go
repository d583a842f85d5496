package models

import "fmt"

// BatchState is one in-flight batch. Cursor always equals len(Decisions);
// PoolOffset is the index of Assets[0] in the filtered pool. Confirming is set
// on the stored copy while the delete decisions are being carried out.
type BatchState struct {
	Filter         Filter          `json:"filter"`
	BatchIndex     int             `json:"batch_index"`
	PoolOffset     int             `json:"pool_offset"`
	Assets         []Asset         `json:"assets"`
	Cursor         int             `json:"cursor"`
	Decisions      []SwipeDecision `json:"decisions"`
	HadAnyDeletion bool            `json:"had_any_deletion"`
	Reviewing      bool            `json:"reviewing"`
	Confirming     bool            `json:"confirming,omitempty"`
}

// Current returns the asset awaiting a decision.
func (b *BatchState) Current() (Asset, bool) {
	if b == nil || b.Cursor < 0 || b.Cursor >= len(b.Assets) {
		return Asset{}, false
	}
	return b.Assets[b.Cursor], true
}

func (b *BatchState) Done() bool {
	return b.Cursor >= len(b.Assets)
}

func (b *BatchState) AssetByID(id string) (Asset, bool) {
	for _, a := range b.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

func (b *BatchState) HasDeleteDecision() bool {
	for _, d := range b.Decisions {
		if d.Action == ActionDelete {
			return true
		}
	}
	return false
}

// Partition splits the recorded decisions into keep and delete asset ids,
// preserving swipe order.
func (b *BatchState) Partition() (keep, del []string) {
	for _, d := range b.Decisions {
		if d.Action == ActionDelete {
			del = append(del, d.AssetID)
		} else {
			keep = append(keep, d.AssetID)
		}
	}
	return keep, del
}

func (b *BatchState) DecidedIDs() []string {
	ids := make([]string, 0, len(b.Decisions))
	for _, d := range b.Decisions {
		ids = append(ids, d.AssetID)
	}
	return ids
}

// Validate checks the structural invariants of a batch loaded from storage.
func (b *BatchState) Validate() error {
	if b.Cursor < 0 || b.Cursor > len(b.Assets) {
		return fmt.Errorf("cursor %d out of range [0,%d]", b.Cursor, len(b.Assets))
	}
	if len(b.Decisions) != b.Cursor {
		return fmt.Errorf("decisions %d do not match cursor %d", len(b.Decisions), b.Cursor)
	}
	for i, d := range b.Decisions {
		if d.AssetID != b.Assets[i].ID {
			return fmt.Errorf("decision %d refers to %q, expected %q", i, d.AssetID, b.Assets[i].ID)
		}
	}
	if b.Reviewing && !b.Done() {
		return fmt.Errorf("reviewing batch with %d undecided assets", len(b.Assets)-b.Cursor)
	}
	if b.Confirming && !b.Reviewing {
		return fmt.Errorf("confirming batch is not under review")
	}
	return nil
}

func (b *BatchState) Clone() *BatchState {
	if b == nil {
		return nil
	}
	out := *b
	out.Assets = make([]Asset, len(b.Assets))
	copy(out.Assets, b.Assets)
	out.Decisions = make([]SwipeDecision, len(b.Decisions))
	copy(out.Decisions, b.Decisions)
	return &out
}
