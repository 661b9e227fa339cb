package classifications_test

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/lifecycle"
	"github.com/JaimeStill/beacon/pkg/pagination"
	"github.com/JaimeStill/beacon/pkg/storage"
)

// fakeResponder answers every post with a valid result unless reply overrides it.
type fakeResponder struct {
	reply func(posts []responder.PostRecord) (string, error)

	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeResponder) Model() string { return "gemini-test" }

func (f *fakeResponder) Classify(ctx context.Context, posts []responder.PostRecord) (string, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.reply != nil {
		return f.reply(posts)
	}
	return validReply(posts), nil
}

func validReply(posts []responder.PostRecord) string {
	out := make([]map[string]any, len(posts))
	for i, p := range posts {
		out[i] = map[string]any{
			"uuid":                 p.UUID,
			"topic_classification": "Infrastructure and Transportation",
			"urgency_level":        60,
			"sentiment":            "Negative",
			"target_audience":      []string{"Public Transport Users"},
			"affected_region":      "South Jakarta",
			"contextual_content":   "road damage",
			"contextual_keywords":  []string{"jalan", "rusak"},
		}
	}
	data, _ := json.Marshal(out)
	return "```json\n" + string(data) + "\n```"
}

type fakeArchive struct {
	mu    sync.Mutex
	blobs map[string]string
	err   error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{blobs: make(map[string]string)}
}

func (f *fakeArchive) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeArchive) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = string(data)
	return nil
}

func (f *fakeArchive) Download(_ context.Context, key string) (*storage.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewBufferString(data)),
		ContentType:   "text/plain; charset=utf-8",
		ContentLength: int64(len(data)),
	}, nil
}

func (f *fakeArchive) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	batches map[uuid.UUID]classifications.Batch
	rows    []classifications.Classification
	saves   int
	err     error

	keywordLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: make(map[uuid.UUID]classifications.Batch)}
}

func (f *fakeStore) SaveBatch(
	_ context.Context,
	batch classifications.Batch,
	rows []classifications.Classification,
) (*classifications.Batch, []classifications.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, nil, f.err
	}
	f.saves++
	batch.CreatedAt = time.Now()
	f.batches[batch.ID] = batch

	stored := make([]classifications.Classification, len(rows))
	for i, r := range rows {
		r.ID = uuid.New()
		r.ClassifiedAt = batch.CreatedAt
		stored[i] = r
	}
	f.rows = append(f.rows, stored...)
	return &batch, stored, nil
}

func (f *fakeStore) List(
	_ context.Context,
	page pagination.PageRequest,
	filters classifications.Filters,
) (*pagination.PageResult[classifications.Classification], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.match(filters)

	end := min(page.Offset()+page.PageSize, len(matched))
	start := min(page.Offset(), end)
	result := pagination.NewPageResult(matched[start:end], len(matched), page)
	return &result, nil
}

func (f *fakeStore) match(filters classifications.Filters) []classifications.Classification {
	var matched []classifications.Classification
	for _, r := range f.rows {
		if filters.Topic != nil && r.Topic != *filters.Topic {
			continue
		}
		if filters.Sentiment != nil && r.Sentiment != *filters.Sentiment {
			continue
		}
		if filters.MinUrgency != nil && r.Urgency < *filters.MinUrgency {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// group accumulates count, urgency sum, and sentiment tallies for one key.
type group struct {
	count      int
	sum        int
	sentiments map[string]int
}

func (g *group) add(c classifications.Classification) {
	if g.sentiments == nil {
		g.sentiments = make(map[string]int)
	}
	g.count++
	g.sum += c.Urgency
	g.sentiments[c.Sentiment]++
}

func (g *group) avg() float64 { return float64(g.sum) / float64(g.count) }

func (g *group) dominant() string {
	var best string
	for s, n := range g.sentiments {
		if n > g.sentiments[best] || (n == g.sentiments[best] && s < best) {
			best = s
		}
	}
	return best
}

func (f *fakeStore) Stats(
	_ context.Context,
	filters classifications.Filters,
	keywordLimit int,
) (*classifications.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keywordLimit = keywordLimit
	var stats classifications.Stats
	var total group
	topics := map[string]*group{}
	sentiments := map[string]*group{}
	regions := map[[2]string]int{}
	keywords := map[string]*group{}

	get := func(m map[string]*group, key string) *group {
		if m[key] == nil {
			m[key] = &group{}
		}
		return m[key]
	}

	for _, c := range f.match(filters) {
		total.add(c)
		switch classifications.Band(c.Urgency) {
		case "critical":
			stats.Overall.Critical++
		case "high":
			stats.Overall.High++
		case "medium":
			stats.Overall.Medium++
		default:
			stats.Overall.Low++
		}
		get(topics, c.Topic).add(c)
		get(sentiments, c.Sentiment).add(c)
		regions[[2]string{c.Topic, c.AffectedRegion}]++
		for _, k := range c.ContextualKeywords {
			get(keywords, strings.ToLower(k)).add(c)
		}
	}

	stats.Overall.Total = total.count
	if total.count > 0 {
		stats.Overall.AvgUrgency = total.avg()
	}
	for t, g := range topics {
		stats.ByTopic = append(stats.ByTopic, classifications.TopicStat{
			Topic: t, Count: g.count, AvgUrgency: g.avg(), Sentiment: g.dominant(),
		})
	}
	for s, g := range sentiments {
		stats.BySentiment = append(stats.BySentiment, classifications.SentimentStat{
			Sentiment: s, Count: g.count, AvgUrgency: g.avg(),
		})
	}
	for key, n := range regions {
		stats.TopicRegions = append(stats.TopicRegions, classifications.TopicRegion{
			Topic: key[0], Region: key[1], Count: n,
		})
	}
	for k, g := range keywords {
		stats.Keywords = append(stats.Keywords, classifications.KeywordStat{
			Keyword: k, Count: g.count, AvgUrgency: g.avg(), Sentiment: g.dominant(),
		})
	}
	slices.SortFunc(stats.Keywords, func(a, b classifications.KeywordStat) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Keyword, b.Keyword))
	})
	if len(stats.Keywords) > keywordLimit {
		stats.Keywords = stats.Keywords[:keywordLimit]
	}
	return &stats, nil
}

func (f *fakeStore) Find(_ context.Context, id uuid.UUID) (*classifications.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, classifications.ErrNotFound
}

func (f *fakeStore) FindByPost(_ context.Context, postUUID string) ([]classifications.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []classifications.Classification
	for _, r := range f.rows {
		if r.PostUUID == postUUID {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, classifications.ErrNotFound
	}
	return out, nil
}

func (f *fakeStore) FindBatch(_ context.Context, id uuid.UUID) (*classifications.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, classifications.ErrBatchNotFound
	}
	return &b, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return classifications.ErrNotFound
}

func posts(n int) []responder.PostRecord {
	out := make([]responder.PostRecord, n)
	for i := range out {
		out[i] = responder.PostRecord{
			UUID:   fmt.Sprintf("post-%02d", i),
			Fields: map[string]any{"text": strings.Repeat("x", i+1)},
		}
	}
	return out
}
