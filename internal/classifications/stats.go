package classifications

import (
	"cmp"
	"math"
	"slices"
)

// Urgency band floors. Scores below MediumUrgency are low.
const (
	CriticalUrgency = 80
	HighUrgency     = 61
	MediumUrgency   = 31
)

// Matrix thresholds: topics at or above MatrixUrgency average are urgent, and
// keywords at or above KeywordUrgency average count as high urgency.
const (
	MatrixUrgency  = 60
	KeywordUrgency = 70
)

// Keyword list bounds for Stats.
const (
	DefaultKeywordLimit = 50
	MaxKeywordLimit     = 200
)

// Band names the urgency band of a score.
func Band(urgency int) string {
	switch {
	case urgency >= CriticalUrgency:
		return "critical"
	case urgency >= HighUrgency:
		return "high"
	case urgency >= MediumUrgency:
		return "medium"
	default:
		return "low"
	}
}

// Quadrant places a topic on the urgency/frequency matrix. A topic is frequent
// when its count reaches a quarter of the number of topics, with a floor of 2.
func Quadrant(avgUrgency float64, count, topics int) string {
	urgent := avgUrgency >= MatrixUrgency
	frequent := float64(count) >= max(2, float64(topics)/4)

	switch {
	case urgent && frequent:
		return "critical"
	case urgent:
		return "monitor"
	case frequent:
		return "trending"
	default:
		return "routine"
	}
}

// UrgencyOverview counts classifications per urgency band.
type UrgencyOverview struct {
	Total      int     `json:"total"`
	AvgUrgency float64 `json:"avg_urgency"`
	Critical   int     `json:"critical"`
	High       int     `json:"high"`
	Medium     int     `json:"medium"`
	Low        int     `json:"low"`
}

// TopicStat aggregates one topic. Sentiment is the most frequent sentiment.
type TopicStat struct {
	Topic      string  `json:"topic"`
	Count      int     `json:"count"`
	AvgUrgency float64 `json:"avg_urgency"`
	Sentiment  string  `json:"sentiment"`
	Quadrant   string  `json:"quadrant"`
}

type SentimentStat struct {
	Sentiment  string  `json:"sentiment"`
	Count      int     `json:"count"`
	AvgUrgency float64 `json:"avg_urgency"`
}

type TopicRegion struct {
	Topic  string `json:"topic"`
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// KeywordStat aggregates one lowercased contextual keyword.
type KeywordStat struct {
	Keyword    string  `json:"keyword"`
	Count      int     `json:"count"`
	AvgUrgency float64 `json:"avg_urgency"`
	Sentiment  string  `json:"sentiment"`
}

// Stats summarizes the classifications matching a filter set.
type Stats struct {
	Overall             UrgencyOverview `json:"overall"`
	ByTopic             []TopicStat     `json:"by_topic"`
	BySentiment         []SentimentStat `json:"by_sentiment"`
	TopicRegions        []TopicRegion   `json:"topic_regions"`
	Keywords            []KeywordStat   `json:"keywords"`
	HighUrgencyKeywords int             `json:"high_urgency_keywords"`
}

// finish derives quadrants and keyword counts from the raw aggregates and
// orders topics by descending average urgency.
func (s *Stats) finish() {
	s.Overall.AvgUrgency = round(s.Overall.AvgUrgency)

	for i := range s.ByTopic {
		t := &s.ByTopic[i]
		t.AvgUrgency = round(t.AvgUrgency)
		t.Quadrant = Quadrant(t.AvgUrgency, t.Count, len(s.ByTopic))
	}
	slices.SortStableFunc(s.ByTopic, func(a, b TopicStat) int {
		return cmp.Or(
			cmp.Compare(b.AvgUrgency, a.AvgUrgency),
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Topic, b.Topic),
		)
	})

	for i := range s.BySentiment {
		s.BySentiment[i].AvgUrgency = round(s.BySentiment[i].AvgUrgency)
	}

	s.HighUrgencyKeywords = 0
	for i := range s.Keywords {
		k := &s.Keywords[i]
		k.AvgUrgency = round(k.AvgUrgency)
		if k.AvgUrgency >= KeywordUrgency {
			s.HighUrgencyKeywords++
		}
	}

	if s.ByTopic == nil {
		s.ByTopic = []TopicStat{}
	}
	if s.BySentiment == nil {
		s.BySentiment = []SentimentStat{}
	}
	if s.TopicRegions == nil {
		s.TopicRegions = []TopicRegion{}
	}
	if s.Keywords == nil {
		s.Keywords = []KeywordStat{}
	}
}

func round(v float64) float64 {
	return math.Round(v*10) / 10
}
