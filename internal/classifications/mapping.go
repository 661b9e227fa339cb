package classifications

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/pkg/query"
	"github.com/JaimeStill/beacon/pkg/repository"
)

var projection = query.
	NewProjection("public.classifications", "c").
	Field("id", "id").
	Field("batch_id", "batch_id").
	Field("post_uuid", "post_uuid").
	Field("topic", "topic").
	Field("urgency", "urgency").
	Field("sentiment", "sentiment").
	Field("target_audience", "target_audience").
	Field("affected_region", "affected_region").
	Field("contextual_content", "contextual_content").
	Field("contextual_keywords", "contextual_keywords").
	Field("model_name", "model_name").
	Field("classified_at", "classified_at")

var defaultSort = []query.SortField{
	{Field: "classified_at", Descending: true},
	{Field: "urgency", Descending: true},
}

const returning = `RETURNING id, batch_id, post_uuid, topic, urgency, sentiment,
	target_audience, affected_region, contextual_content, contextual_keywords,
	model_name, classified_at`

// Filters narrows List results. Nil fields are ignored.
type Filters struct {
	Topic      *string    `json:"topic,omitempty"`
	Sentiment  *string    `json:"sentiment,omitempty"`
	Region     *string    `json:"region,omitempty"`
	Audience   *string    `json:"audience,omitempty"`
	BatchID    *uuid.UUID `json:"batch_id,omitempty"`
	MinUrgency *int       `json:"min_urgency,omitempty"`
	Search     *string    `json:"search,omitempty"`
	Sort       string     `json:"sort,omitempty"`
}

// Apply adds filter conditions and ordering to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("topic", f.Topic).
		WhereEquals("sentiment", f.Sentiment).
		WhereEquals("affected_region", f.Region).
		WhereHas("target_audience", f.Audience).
		WhereEquals("batch_id", f.BatchID).
		WhereAtLeast("urgency", f.MinUrgency).
		WhereContains("contextual_content", f.Search)

	if sort := query.ParseSortFields(f.Sort); len(sort) > 0 {
		b.OrderBy(sort)
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters. Malformed
// batch_id and min_urgency values are rejected.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	str := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}

	f.Topic = str("topic")
	f.Sentiment = str("sentiment")
	f.Region = str("region")
	f.Audience = str("audience")
	f.Search = str("search")
	f.Sort = values.Get("sort")

	if v := values.Get("batch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid batch_id %q: %w", v, err)
		}
		f.BatchID = &id
	}

	if v := values.Get("min_urgency"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid min_urgency %q: %w", v, err)
		}
		f.MinUrgency = &n
	}

	return f, nil
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var c Classification
	var audienceRaw, keywordsRaw []byte

	err := s.Scan(
		&c.ID,
		&c.BatchID,
		&c.PostUUID,
		&c.Topic,
		&c.Urgency,
		&c.Sentiment,
		&audienceRaw,
		&c.AffectedRegion,
		&c.ContextualContent,
		&keywordsRaw,
		&c.ModelName,
		&c.ClassifiedAt,
	)
	if err != nil {
		return c, err
	}

	if c.TargetAudience, err = decodeList(audienceRaw); err != nil {
		return c, fmt.Errorf("unmarshal target_audience: %w", err)
	}
	if c.ContextualKeywords, err = decodeList(keywordsRaw); err != nil {
		return c, fmt.Errorf("unmarshal contextual_keywords: %w", err)
	}
	return c, nil
}

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(
		&b.ID,
		&b.PostCount,
		&b.ChunkCount,
		&b.Classified,
		&b.Skipped,
		&b.ModelName,
		&b.CreatedAt,
	)
	return b, err
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
