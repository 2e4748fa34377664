package analysis

import "sort"

// TriggerCount is one tally row
type TriggerCount struct {
	Trigger string `json:"trigger"`
	Count   int    `json:"count"`
}

// TopTriggers tallies trigger tags with exact, case-sensitive matching
// and returns the limit most frequent. Ties keep first-encounter order.
func TopTriggers(records []MoodRecord, limit int) []TriggerCount {
	counts := []TriggerCount{}
	index := make(map[string]int)

	for _, r := range records {
		for _, t := range r.Triggers {
			if i, ok := index[t]; ok {
				counts[i].Count++
				continue
			}
			index[t] = len(counts)
			counts = append(counts, TriggerCount{Trigger: t, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
