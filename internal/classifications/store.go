package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/pkg/pagination"
	"github.com/JaimeStill/beacon/pkg/query"
	"github.com/JaimeStill/beacon/pkg/repository"
)

// Store persists batches and classifications.
type Store interface {
	// SaveBatch inserts the batch and its rows in one transaction and returns
	// them with database-assigned fields populated.
	SaveBatch(ctx context.Context, batch Batch, rows []Classification) (*Batch, []Classification, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Classification], error)
	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	FindByPost(ctx context.Context, postUUID string) ([]Classification, error)
	FindBatch(ctx context.Context, id uuid.UUID) (*Batch, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Stats aggregates the rows matching filters. Keywords are limited to the
	// keywordLimit most frequent.
	Stats(ctx context.Context, filters Filters, keywordLimit int) (*Stats, error)
}

type postgres struct {
	db *sql.DB
}

// NewStore returns a PostgreSQL Store.
func NewStore(db *sql.DB) Store {
	return &postgres{db: db}
}

func (p *postgres) SaveBatch(ctx context.Context, batch Batch, rows []Classification) (*Batch, []Classification, error) {
	type saved struct {
		batch Batch
		rows  []Classification
	}

	insertBatch := `
		INSERT INTO batches (id, post_count, chunk_count, classified, skipped, model_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, post_count, chunk_count, classified, skipped, model_name, created_at`

	insertRow := `
		INSERT INTO classifications (
			batch_id, post_uuid, topic, urgency, sentiment, target_audience,
			affected_region, contextual_content, contextual_keywords, model_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		` + returning

	out, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (saved, error) {
		b, err := repository.QueryOne(ctx, tx, insertBatch, []any{
			batch.ID, batch.PostCount, batch.ChunkCount,
			batch.Classified, batch.Skipped, batch.ModelName,
		}, scanBatch)
		if err != nil {
			return saved{}, fmt.Errorf("insert batch: %w", err)
		}

		stored := make([]Classification, 0, len(rows))
		for _, row := range rows {
			audience, err := json.Marshal(row.TargetAudience)
			if err != nil {
				return saved{}, fmt.Errorf("marshal target_audience: %w", err)
			}
			keywords, err := json.Marshal(row.ContextualKeywords)
			if err != nil {
				return saved{}, fmt.Errorf("marshal contextual_keywords: %w", err)
			}

			c, err := repository.QueryOne(ctx, tx, insertRow, []any{
				b.ID, row.PostUUID, row.Topic, row.Urgency, row.Sentiment, audience,
				row.AffectedRegion, row.ContextualContent, keywords, row.ModelName,
			}, scanClassification)
			if err != nil {
				return saved{}, fmt.Errorf("insert classification %s: %w", row.PostUUID, err)
			}
			stored = append(stored, c)
		}

		return saved{batch: b, rows: stored}, nil
	})
	if err != nil {
		return nil, nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &out.batch, out.rows, nil
}

func (p *postgres) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Classification], error) {
	qb := filters.Apply(query.NewBuilder(projection, defaultSort...))

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, p.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (p *postgres) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	c, err := repository.QueryOne(ctx, p.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (p *postgres) FindByPost(ctx context.Context, postUUID string) ([]Classification, error) {
	q, args := query.NewBuilder(projection, defaultSort...).
		WhereEquals("post_uuid", postUUID).
		Build()

	items, err := repository.QueryMany(ctx, p.db, q, args, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications for post %s: %w", postUUID, err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (p *postgres) FindBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q := `
		SELECT id, post_count, chunk_count, classified, skipped, model_name, created_at
		FROM batches WHERE id = $1`

	b, err := repository.QueryOne(ctx, p.db, q, []any{id}, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrBatchNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (p *postgres) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecOne(ctx, p.db, "DELETE FROM classifications WHERE id = $1", id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

var overviewColumns = fmt.Sprintf(`COUNT(*),
	COALESCE(AVG(c.urgency), 0)::float8,
	COUNT(*) FILTER (WHERE c.urgency >= %[1]d),
	COUNT(*) FILTER (WHERE c.urgency >= %[2]d AND c.urgency < %[1]d),
	COUNT(*) FILTER (WHERE c.urgency >= %[3]d AND c.urgency < %[2]d),
	COUNT(*) FILTER (WHERE c.urgency < %[3]d)`,
	CriticalUrgency, HighUrgency, MediumUrgency)

const keywordJoin = `CROSS JOIN LATERAL jsonb_array_elements_text(c.contextual_keywords) AS k(keyword)`

func (p *postgres) Stats(ctx context.Context, filters Filters, keywordLimit int) (*Stats, error) {
	qb := filters.Apply(query.NewBuilder(projection))
	var stats Stats

	q, args := qb.BuildAggregate(overviewColumns, "", "")
	o := &stats.Overall
	err := p.db.QueryRowContext(ctx, q, args...).
		Scan(&o.Total, &o.AvgUrgency, &o.Critical, &o.High, &o.Medium, &o.Low)
	if err != nil {
		return nil, fmt.Errorf("urgency overview: %w", err)
	}

	q, args = qb.BuildAggregate(
		"c.topic, COUNT(*), AVG(c.urgency)::float8, MODE() WITHIN GROUP (ORDER BY c.sentiment)",
		"", "GROUP BY c.topic",
	)
	stats.ByTopic, err = repository.QueryMany(ctx, p.db, q, args, func(s repository.Scanner) (TopicStat, error) {
		var t TopicStat
		err := s.Scan(&t.Topic, &t.Count, &t.AvgUrgency, &t.Sentiment)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("topic stats: %w", err)
	}

	q, args = qb.BuildAggregate(
		"c.sentiment, COUNT(*), AVG(c.urgency)::float8",
		"", "GROUP BY c.sentiment ORDER BY COUNT(*) DESC, c.sentiment",
	)
	stats.BySentiment, err = repository.QueryMany(ctx, p.db, q, args, func(s repository.Scanner) (SentimentStat, error) {
		var st SentimentStat
		err := s.Scan(&st.Sentiment, &st.Count, &st.AvgUrgency)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment stats: %w", err)
	}

	q, args = qb.BuildAggregate(
		"c.topic, c.affected_region, COUNT(*)",
		"", "GROUP BY c.topic, c.affected_region ORDER BY COUNT(*) DESC, c.topic, c.affected_region",
	)
	stats.TopicRegions, err = repository.QueryMany(ctx, p.db, q, args, func(s repository.Scanner) (TopicRegion, error) {
		var tr TopicRegion
		err := s.Scan(&tr.Topic, &tr.Region, &tr.Count)
		return tr, err
	})
	if err != nil {
		return nil, fmt.Errorf("topic region stats: %w", err)
	}

	q, args = qb.BuildAggregate(
		"lower(k.keyword), COUNT(*), AVG(c.urgency)::float8, MODE() WITHIN GROUP (ORDER BY c.sentiment)",
		keywordJoin,
		fmt.Sprintf("GROUP BY lower(k.keyword) ORDER BY COUNT(*) DESC, lower(k.keyword) LIMIT %d", keywordLimit),
	)
	stats.Keywords, err = repository.QueryMany(ctx, p.db, q, args, func(s repository.Scanner) (KeywordStat, error) {
		var k KeywordStat
		err := s.Scan(&k.Keyword, &k.Count, &k.AvgUrgency, &k.Sentiment)
		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("keyword stats: %w", err)
	}

	return &stats, nil
}
