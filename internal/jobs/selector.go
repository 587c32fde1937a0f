package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sheetcast/sheetcast/internal/models"
)

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006"}

var timeLayouts = []string{"15:04", "15:04:05"}

// Selector filters the full row set down to rows that are valid,
// unpublished and whose scheduled instant has elapsed. Output keeps the
// input's relative order.
type Selector struct{}

func NewSelector() *Selector {
	return &Selector{}
}

func (s *Selector) Select(rows []*models.PostRow, now time.Time) []*models.PostRow {
	var due []*models.PostRow
	for _, row := range rows {
		// incomplete rows are simply not ready yet, not errors
		if !rowValid(row) {
			continue
		}
		if !statusEligible(row.Status) {
			continue
		}

		scheduled, err := ParseSchedule(row.Date, row.Time, now.Location())
		if err != nil {
			slog.Warn("skipping row with unparseable schedule", "row", row.RowNumber, "date", row.Date, "time", row.Time)
			continue
		}
		if scheduled.After(now) {
			continue
		}
		due = append(due, row)
	}
	return due
}

func rowValid(row *models.PostRow) bool {
	return row.Date != "" && row.Time != "" && row.Text != "" && len(row.Platforms()) > 0
}

// statusEligible keeps unclaimed rows. A row still in Publishing is a
// crashed run's leftover: the run lock guarantees no second live run, so it
// is safe to reclaim. Failed rows come back only through the pending cache.
func statusEligible(status string) bool {
	switch status {
	case "", models.StatusPending, models.StatusPublishing:
		return true
	}
	return false
}

// ParseSchedule combines a row's date and time cells into a point in time.
// The unambiguous YYYY-MM-DD and HH:MM forms are primary; a couple of
// common European variants are tolerated.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	for _, dl := range dateLayouts {
		for _, tl := range timeLayouts {
			if t, err := time.ParseInLocation(dl+" "+tl, date+" "+clock, loc); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date/time format %q %q", date, clock)
}
