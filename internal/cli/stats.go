package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"swipetriage/internal/di"
	"swipetriage/internal/models"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show persisted triage progress and today's quota",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

type statsOutput struct {
	Progress *models.ProgressRecord       `json:"progress"`
	Quota    map[string]models.QuotaState `json:"quota"`
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := di.InitStore(cliFlags())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	record, quotas, err := s.Load()
	if err != nil {
		exitErr("load progress", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(statsOutput{Progress: record, Quota: quotas}, "", "  ")
		fmt.Println(string(b))
		return
	}
	renderStats(os.Stdout, record, quotas)
}

func renderStats(w io.Writer, record *models.ProgressRecord, quotas map[string]models.QuotaState) {
	fmt.Fprintf(w, "Selected filter:  %s\n", record.SelectedFilter)
	fmt.Fprintf(w, "Processed:        %s\n", humanize.Comma(int64(record.TotalProcessed)))
	fmt.Fprintf(w, "Deleted:          %s\n", humanize.Comma(int64(record.TotalDeleted)))
	fmt.Fprintf(w, "Storage saved:    %s\n", humanize.Bytes(uint64(max(record.TotalStorageSavedBytes, 0))))
	fmt.Fprintf(w, "Active days:      %d\n", record.ActiveDays.Len())

	if len(record.PerFilterProcessed) > 0 {
		fmt.Fprintln(w, "\nPer filter:")
		for _, key := range sortedKeys(record.PerFilterProcessed) {
			fmt.Fprintf(w, "  %-14s %s\n", key, humanize.Comma(int64(record.PerFilterProcessed[key])))
		}
	}

	if len(quotas) > 0 {
		fmt.Fprintln(w, "\nQuota:")
		for _, key := range sortedKeys(quotas) {
			q := quotas[key]
			fmt.Fprintf(w, "  %-14s %s used=%d bonus=%d\n", key, q.Day, q.SwipesUsedToday, q.BonusSwipesRemaining)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
