package domain

import (
	"sort"
	"time"
)

type Stats struct {
	Labels []string  `json:"labels"`
	Codes  []string  `json:"codes"`
	Votes  int       `json:"votes"`
	Values []float64 `json:"values"`
}

// NewStats reduces a tally against the poll's choices. Values are shares of
// submissions, so on multiple-choice polls they can add up to more than 1.
func NewStats(choices []Choice, t Tally) Stats {
	ordered := make([]Choice, len(choices))
	copy(ordered, choices)
	SortChoices(ordered)

	stats := Stats{
		Labels: make([]string, 0, len(ordered)),
		Codes:  make([]string, 0, len(ordered)),
		Votes:  t.Submissions,
		Values: make([]float64, 0, len(ordered)),
	}
	for _, c := range ordered {
		stats.Labels = append(stats.Labels, c.Text)
		stats.Codes = append(stats.Codes, c.Code)
		value := 0.0
		if t.Submissions > 0 {
			value = float64(t.PerChoice[c.ID]) / float64(t.Submissions)
		}
		stats.Values = append(stats.Values, value)
	}
	return stats
}

// SortChoices puts choices in their display order: text, then code, then id.
func SortChoices(choices []Choice) {
	sort.SliceStable(choices, func(i, j int) bool {
		a, b := choices[i], choices[j]
		if a.Text != b.Text {
			return a.Text < b.Text
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ID < b.ID
	})
}

// StatsSnapshot is a stored result of a batch aggregation.
type StatsSnapshot struct {
	PollID     int64     `json:"poll_id"`
	Stats      Stats     `json:"stats"`
	ComputedAt time.Time `json:"computed_at"`
}
