// Package classifications turns raw model responses into stored topic,
// urgency, sentiment, audience, and region labels for social-media posts.
// Posts are split into chunks, each chunk is one model call, and the parsed
// rows of a submission are stored together as a batch.
package classifications

import (
	"time"

	"github.com/google/uuid"
)

// Classification is one stored, validated label set for a post.
type Classification struct {
	ID                 uuid.UUID `json:"id"`
	BatchID            uuid.UUID `json:"batch_id"`
	PostUUID           string    `json:"post_uuid"`
	Topic              string    `json:"topic"`
	Urgency            int       `json:"urgency"`
	Sentiment          string    `json:"sentiment"`
	TargetAudience     []string  `json:"target_audience"`
	AffectedRegion     string    `json:"affected_region"`
	ContextualContent  string    `json:"contextual_content"`
	ContextualKeywords []string  `json:"contextual_keywords"`
	ModelName          string    `json:"model_name"`
	ClassifiedAt       time.Time `json:"classified_at"`
}

// Batch records one classification submission.
type Batch struct {
	ID         uuid.UUID `json:"id"`
	PostCount  int       `json:"post_count"`
	ChunkCount int       `json:"chunk_count"`
	Classified int       `json:"classified"`
	Skipped    int       `json:"skipped"`
	ModelName  string    `json:"model_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Skip explains why a post produced no stored classification.
type Skip struct {
	PostUUID string `json:"post_uuid"`
	Chunk    int    `json:"chunk"`
	Reason   string `json:"reason"`
}

// BatchResult is returned by System.Classify.
type BatchResult struct {
	Batch           Batch            `json:"batch"`
	Classifications []Classification `json:"classifications"`
	Skipped         []Skip           `json:"skipped"`
}

// RawResponse carries the unparsed model output for a set of posts.
type RawResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}
