package analysis

import (
	"time"

	"symptocare-backend/domain/config"
)

// EpisodeType is the affect of an episode
type EpisodeType string

const (
	EpisodeManic      EpisodeType = "manic"
	EpisodeHypomanic  EpisodeType = "hypomanic"
	EpisodeDepressive EpisodeType = "depressive"
	EpisodeMixed      EpisodeType = "mixed"
)

// IsValid reports whether t is a known episode type
func (t EpisodeType) IsValid() bool {
	switch t {
	case EpisodeManic, EpisodeHypomanic, EpisodeDepressive, EpisodeMixed:
		return true
	}
	return false
}

// EpisodeSeverity grades an episode
type EpisodeSeverity string

const (
	EpisodeMild     EpisodeSeverity = "mild"
	EpisodeModerate EpisodeSeverity = "moderate"
	EpisodeSevere   EpisodeSeverity = "severe"
)

// IsValid reports whether s is a known severity
func (s EpisodeSeverity) IsValid() bool {
	switch s {
	case EpisodeMild, EpisodeModerate, EpisodeSevere:
		return true
	}
	return false
}

// InferredEpisode is a contiguous run of depressive- or manic-leaning
// records. It is derived per call and never merged with logged episodes.
type InferredEpisode struct {
	Type      EpisodeType     `json:"type"`
	Severity  EpisodeSeverity `json:"severity"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Entries   []MoodRecord    `json:"entries"`
}

type leaning int

const (
	leaningNeutral leaning = iota
	leaningDepressive
	leaningManic
)

func classify(r MoodRecord, cfg *config.AnalysisConfig) leaning {
	// A missing energy reading counts as low: it can satisfy the
	// depressive rule but never the manic one.
	lowEnergy, highEnergy := true, false
	if r.EnergyLevel != nil {
		lowEnergy = *r.EnergyLevel <= cfg.DepressiveEnergyMax
		highEnergy = *r.EnergyLevel >= cfg.ManicEnergyMin
	}
	switch {
	case r.Mood <= cfg.DepressiveMoodMax && lowEnergy:
		return leaningDepressive
	case r.Mood >= cfg.ManicMoodMin && highEnergy:
		return leaningManic
	default:
		return leaningNeutral
	}
}

// DetectEpisodes segments records, walked chronologically, into episodes.
// A change of leaning closes the open episode and opens another; a
// neutral record closes it without opening one.
func DetectEpisodes(records []MoodRecord, cfg *config.AnalysisConfig) []InferredEpisode {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	episodes := []InferredEpisode{}
	var current *InferredEpisode

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.Severity = episodeSeverity(len(current.Entries), cfg)
		episodes = append(episodes, *current)
		current = nil
	}

	for _, r := range oldestFirst(records) {
		var typ EpisodeType
		switch classify(r, cfg) {
		case leaningDepressive:
			typ = EpisodeDepressive
		case leaningManic:
			typ = EpisodeManic
		default:
			closeCurrent()
			continue
		}

		if current != nil && current.Type == typ {
			current.EndDate = r.CreatedAt
			current.Entries = append(current.Entries, r)
			continue
		}

		closeCurrent()
		current = &InferredEpisode{
			Type:      typ,
			StartDate: r.CreatedAt,
			EndDate:   r.CreatedAt,
			Entries:   []MoodRecord{r},
		}
	}
	closeCurrent()

	return episodes
}

func episodeSeverity(entries int, cfg *config.AnalysisConfig) EpisodeSeverity {
	switch {
	case entries >= cfg.EpisodeSevereEntries:
		return EpisodeSevere
	case entries >= cfg.EpisodeModerateEntries:
		return EpisodeModerate
	default:
		return EpisodeMild
	}
}
