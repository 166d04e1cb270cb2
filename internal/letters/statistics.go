package letters

import (
	"math"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
)

type StatusCount struct {
	Status     Status  `json:"status"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ClassificationCount struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type CriticalityCount struct {
	Level analysis.Criticality `json:"level"`
	Name  string               `json:"name"`
	Count int                  `json:"count"`
}

// Statistics summarizes the letter table. Every status is listed; the
// classification and criticality breakdowns omit empty buckets.
type Statistics struct {
	Total            int                   `json:"total"`
	ByStatus         []StatusCount         `json:"by_status"`
	ByClassification []ClassificationCount `json:"by_classification"`
	ByCriticality    []CriticalityCount    `json:"by_criticality"`
	Overdue          int                   `json:"overdue"`
}

type counts struct {
	status         map[Status]int
	classification map[int]int
	criticality    map[int]int
	overdue        int
}

func buildStatistics(c counts, cats []categories.Category) Statistics {
	stats := Statistics{
		ByStatus:         make([]StatusCount, 0, len(statuses)),
		ByClassification: make([]ClassificationCount, 0),
		ByCriticality:    make([]CriticalityCount, 0),
		Overdue:          c.overdue,
	}

	for _, n := range c.status {
		stats.Total += n
	}

	for _, s := range statuses {
		n := c.status[s]
		stats.ByStatus = append(stats.ByStatus, StatusCount{
			Status:     s,
			Name:       s.Label(),
			Count:      n,
			Percentage: percentage(n, stats.Total),
		})
	}

	for _, cat := range cats {
		if n := c.classification[cat.Number]; n > 0 {
			stats.ByClassification = append(stats.ByClassification, ClassificationCount{
				Number: cat.Number,
				Name:   cat.Name,
				Count:  n,
			})
		}
	}

	for _, level := range analysis.Criticalities() {
		if n := c.criticality[int(level)]; n > 0 {
			stats.ByCriticality = append(stats.ByCriticality, CriticalityCount{
				Level: level,
				Name:  level.Label(),
				Count: n,
			})
		}
	}

	return stats
}

// percentage is n/total as a percent rounded to one decimal place.
func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
