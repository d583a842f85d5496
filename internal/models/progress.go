package models

// ProgressRecord is the durable, process-wide triage progress.
//
// TotalProcessed is not the sum of PerFilterProcessed: a swipe made under the
// random filter also counts toward the year filter of the swiped asset.
// NextBatchIndex is the index the next batch of SelectedFilter gets.
type ProgressRecord struct {
	ProcessedAssetIDs      StringSet      `json:"processed_asset_ids"`
	TotalProcessed         int            `json:"total_processed"`
	PerFilterProcessed     map[string]int `json:"per_filter_processed"`
	SelectedFilter         Filter         `json:"selected_filter"`
	TotalDeleted           int            `json:"total_deleted"`
	TotalStorageSavedBytes int64          `json:"total_storage_saved_bytes"`
	ActiveDays             StringSet      `json:"active_days"`
	NextBatchIndex         int            `json:"next_batch_index"`
}

func NewProgressRecord() *ProgressRecord {
	return &ProgressRecord{
		ProcessedAssetIDs:  NewStringSet(),
		PerFilterProcessed: make(map[string]int),
		SelectedFilter:     RandomFilter(),
		ActiveDays:         NewStringSet(),
	}
}

// Normalize replaces nil collections left by older or partial payloads.
func (p *ProgressRecord) Normalize() {
	if p.ProcessedAssetIDs == nil {
		p.ProcessedAssetIDs = NewStringSet()
	}
	if p.PerFilterProcessed == nil {
		p.PerFilterProcessed = make(map[string]int)
	}
	if p.ActiveDays == nil {
		p.ActiveDays = NewStringSet()
	}
}

// MarkProcessed inserts ids into the processed set and returns how many were new.
func (p *ProgressRecord) MarkProcessed(ids ...string) int {
	added := 0
	for _, id := range ids {
		if p.ProcessedAssetIDs.Add(id) {
			added++
		}
	}
	return added
}

func (p *ProgressRecord) IsProcessed(id string) bool {
	return p.ProcessedAssetIDs.Has(id)
}

// IncProcessed bumps the global counter once and every given filter counter once.
func (p *ProgressRecord) IncProcessed(filterKeys ...string) {
	p.TotalProcessed++
	for _, key := range filterKeys {
		p.PerFilterProcessed[key]++
	}
}

// DecProcessed is the inverse of IncProcessed; counters never go below zero.
func (p *ProgressRecord) DecProcessed(filterKeys ...string) {
	if p.TotalProcessed > 0 {
		p.TotalProcessed--
	}
	for _, key := range filterKeys {
		if p.PerFilterProcessed[key] > 1 {
			p.PerFilterProcessed[key]--
		} else {
			delete(p.PerFilterProcessed, key)
		}
	}
}

func (p *ProgressRecord) FilterProcessed(f Filter) int {
	return p.PerFilterProcessed[f.Key()]
}

func (p *ProgressRecord) RecordDeletion(count int, savedBytes int64) {
	p.TotalDeleted += count
	p.TotalStorageSavedBytes += savedBytes
}

func (p *ProgressRecord) RecordActiveDay(day string) {
	p.ActiveDays.Add(day)
}

func (p *ProgressRecord) Clone() *ProgressRecord {
	out := *p
	out.ProcessedAssetIDs = p.ProcessedAssetIDs.Clone()
	out.ActiveDays = p.ActiveDays.Clone()
	out.PerFilterProcessed = make(map[string]int, len(p.PerFilterProcessed))
	for k, v := range p.PerFilterProcessed {
		out.PerFilterProcessed[k] = v
	}
	return &out
}
