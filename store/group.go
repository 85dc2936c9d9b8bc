package store

import (
	"sort"
	"time"

	"github.com/padraicbc/feedlog/models"
)

// DayLayout formats the label of a DayGroup.
const DayLayout = "2006-01-02"

// DayGroup is every feeding that falls on one calendar day.
type DayGroup struct {
	Label    string           `json:"day"`
	Day      time.Time        `json:"-"`
	Feedings []models.Feeding `json:"feedings"`
}

// GroupByDay partitions recs by calendar day in loc. Days and the records
// inside each day are ordered most recent first, ties broken by higher id.
func GroupByDay(recs []models.Feeding, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]models.Feeding, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})

	groups := []DayGroup{}
	for _, rec := range sorted {
		local := rec.Timestamp.In(loc)
		label := local.Format(DayLayout)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Feedings = append(groups[n-1].Feedings, rec)
			continue
		}
		y, m, d := local.Date()
		groups = append(groups, DayGroup{
			Label:    label,
			Day:      time.Date(y, m, d, 0, 0, 0, 0, loc),
			Feedings: []models.Feeding{rec},
		})
	}
	return groups
}
