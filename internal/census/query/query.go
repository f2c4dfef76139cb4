// Package query holds the read-only aggregations over already-scoped record sets.
package query

import (
	"sort"
	"strings"
	"time"

	"censusdesk/internal/census/models"
)

// DefaultRecentActivity is the size of the dashboard activity feed.
const DefaultRecentActivity = 5

// DisplayFunc renders the submitter of a record for activity feeds.
type DisplayFunc func(r *models.Record) string

// SortNewestFirst orders records by submission time, newest first. Ties keep
// their relative order.
func SortNewestFirst(records []*models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
}

// AggregateByTerritory counts records per territory.
func AggregateByTerritory(records []*models.Record) map[models.Territory]int {
	counts := make(map[models.Territory]int)
	for _, r := range records {
		counts[r.Territory]++
	}
	return counts
}

// RecentActivity returns the n most recently submitted records as feed
// entries. n <= 0 uses DefaultRecentActivity. display may be nil, in which
// case the submitter contact is shown.
func RecentActivity(records []*models.Record, n int, display DisplayFunc) []models.ActivitySummary {
	if n <= 0 {
		n = DefaultRecentActivity
	}
	sorted := make([]*models.Record, len(records))
	copy(sorted, records)
	SortNewestFirst(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]models.ActivitySummary, 0, len(sorted))
	for _, r := range sorted {
		actor := r.SubmittedByContact
		if display != nil {
			if name := display(r); name != "" {
				actor = name
			}
		}
		out = append(out, models.ActivitySummary{
			ActorDisplay:   actor,
			FamilyHeadName: r.FamilyHeadName,
			Territory:      r.Territory,
			Timestamp:      r.SubmittedAt,
		})
	}
	return out
}

// Filter keeps the records matching every predicate set in f. Input order is preserved.
func Filter(records []*models.Record, f models.Filter) []*models.Record {
	if f.IsEmpty() {
		return records
	}
	var to time.Time
	if f.To != nil {
		to = EndOfDay(*f.To)
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]*models.Record, 0, len(records))
	for _, r := range records {
		if f.From != nil && r.SubmittedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && r.SubmittedAt.After(to) {
			continue
		}
		if f.SubmittedBy != nil && r.SubmittedByID != *f.SubmittedBy {
			continue
		}
		if f.Territory != nil && r.Territory != *f.Territory {
			continue
		}
		if f.IdentityProofType != nil && r.IdentityProofType != *f.IdentityProofType {
			continue
		}
		if needle != "" && !matchesText(r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesText(r *models.Record, needle string) bool {
	return strings.Contains(strings.ToLower(r.FamilyHeadName), needle) ||
		strings.Contains(strings.ToLower(r.IdentityNumber), needle) ||
		strings.Contains(strings.ToLower(r.SubmittedByContact), needle)
}

// CountOn counts records submitted on the calendar day of day, in day's location.
func CountOn(records []*models.Record, day time.Time) int {
	start := StartOfDay(day)
	end := EndOfDay(day)
	n := 0
	for _, r := range records {
		at := r.SubmittedAt.In(day.Location())
		if !at.Before(start) && !at.After(end) {
			n++
		}
	}
	return n
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day in its own location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
