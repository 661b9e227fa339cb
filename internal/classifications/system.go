package classifications

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/pagination"
	"github.com/JaimeStill/beacon/pkg/storage"
)

// Responder produces a raw model response for a set of posts.
type Responder interface {
	Classify(ctx context.Context, posts []responder.PostRecord) (string, error)
	Model() string
}

// System defines the public contract for classification domain operations.
type System interface {
	Handler() *Handler

	// Classify splits posts into chunks, classifies each chunk with one model
	// call, and stores every valid result under a new batch.
	Classify(ctx context.Context, posts []responder.PostRecord) (*BatchResult, error)
	// Raw returns the unparsed model response for posts in a single call.
	Raw(ctx context.Context, posts []responder.PostRecord) (*RawResponse, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	FindByPost(ctx context.Context, postUUID string) ([]Classification, error)
	FindBatch(ctx context.Context, id uuid.UUID) (*Batch, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats reports urgency bands, topic, sentiment, and region breakdowns,
	// and keyword frequency over the classifications matching filters.
	Stats(ctx context.Context, filters Filters, keywordLimit int) (*Stats, error)
}

// Options bound how a submission is split into model calls. A zero MaxPosts
// disables the submission limit.
type Options struct {
	BatchSize      int
	MaxConcurrency int
	MaxPosts       int
	Pagination     pagination.Config
}

type system struct {
	store     Store
	responder Responder
	archive   storage.System
	logger    *slog.Logger
	opts      Options
}

// New creates the classification System.
func New(
	store Store,
	rsp Responder,
	archive storage.System,
	logger *slog.Logger,
	opts Options,
) System {
	opts.BatchSize = max(opts.BatchSize, 1)
	opts.MaxConcurrency = max(opts.MaxConcurrency, 1)

	return &system{
		store:     store,
		responder: rsp,
		archive:   archive,
		logger:    logger.With("system", "classifications"),
		opts:      opts,
	}
}

// ArchiveKey is the storage key of the raw response for one chunk of a batch.
func ArchiveKey(batchID uuid.UUID, chunk int) string {
	return fmt.Sprintf("batches/%s/%d.txt", batchID, chunk)
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.opts.Pagination)
}

func (s *system) Classify(ctx context.Context, posts []responder.PostRecord) (_ *BatchResult, err error) {
	if err := s.checkSize(posts); err != nil {
		return nil, err
	}
	if err := checkUUIDs(posts); err != nil {
		return nil, err
	}

	batchID := uuid.New()
	chunks := slices.Collect(slices.Chunk(posts, s.opts.BatchSize))
	raws := make([]string, len(chunks))
	archived := make([]bool, len(chunks))

	defer func() {
		if err != nil {
			s.discard(ctx, batchID, archived)
		}
	}()

	s.logger.InfoContext(ctx, "classifying batch",
		"batch_id", batchID,
		"posts", len(posts),
		"chunks", len(chunks),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			raw, err := s.responder.Classify(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}

			key := ArchiveKey(batchID, i)
			if err := s.archive.Upload(gctx, key, strings.NewReader(raw), "text/plain; charset=utf-8"); err != nil {
				return fmt.Errorf("%w: chunk %d: %w", ErrArchiveFailed, i, err)
			}

			raws[i] = raw
			archived[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, skipped, err := s.collect(ctx, batchID, chunks, raws)
	if err != nil {
		return nil, err
	}

	batch := Batch{
		ID:         batchID,
		PostCount:  len(posts),
		ChunkCount: len(chunks),
		Classified: len(rows),
		Skipped:    len(skipped),
		ModelName:  s.responder.Model(),
	}

	saved, stored, err := s.store.SaveBatch(ctx, batch, rows)
	if err != nil {
		return nil, fmt.Errorf("save batch %s: %w", batchID, err)
	}

	s.logger.InfoContext(ctx, "batch classified",
		"batch_id", batchID,
		"classified", len(stored),
		"skipped", len(skipped),
	)

	return &BatchResult{
		Batch:           *saved,
		Classifications: stored,
		Skipped:         skipped,
	}, nil
}

// discard removes the raw responses archived for a batch that was not stored.
func (s *system) discard(ctx context.Context, batchID uuid.UUID, archived []bool) {
	ctx = context.WithoutCancel(ctx)
	for i, ok := range archived {
		if !ok {
			continue
		}
		key := ArchiveKey(batchID, i)
		if err := s.archive.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "archived response not removed",
				"batch_id", batchID,
				"key", key,
				"error", err,
			)
		}
	}
}

// collect parses every chunk response and keeps the first valid result for
// each post of that chunk. Results for posts outside the chunk are dropped and
// posts without a valid result are reported as skipped.
func (s *system) collect(
	ctx context.Context,
	batchID uuid.UUID,
	chunks [][]responder.PostRecord,
	raws []string,
) ([]Classification, []Skip, error) {
	rows := make([]Classification, 0)
	skipped := make([]Skip, 0)
	model := s.responder.Model()

	for i, raw := range raws {
		results, err := Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		pending := make(map[string]bool, len(chunks[i]))
		for _, p := range chunks[i] {
			pending[p.UUID] = true
		}

		reasons := make(map[string]string)
		for _, r := range results {
			if err := r.Validate(); err != nil {
				if pending[r.UUID] {
					reasons[r.UUID] = err.Error()
				}
				s.logger.WarnContext(ctx, "classification result rejected",
					"batch_id", batchID,
					"chunk", i,
					"post_uuid", r.UUID,
					"error", err,
				)
				continue
			}
			if !pending[r.UUID] {
				s.logger.WarnContext(ctx, "classification result ignored",
					"batch_id", batchID,
					"chunk", i,
					"post_uuid", r.UUID,
					"reason", "not in chunk or already classified",
				)
				continue
			}

			delete(pending, r.UUID)
			rows = append(rows, r.classification(batchID, model))
		}

		for _, p := range chunks[i] {
			if !pending[p.UUID] {
				continue
			}
			delete(pending, p.UUID)

			reason, ok := reasons[p.UUID]
			if !ok {
				reason = "no result returned"
			}
			skipped = append(skipped, Skip{PostUUID: p.UUID, Chunk: i, Reason: reason})
		}
	}

	return rows, skipped, nil
}

func (s *system) Raw(ctx context.Context, posts []responder.PostRecord) (*RawResponse, error) {
	if err := s.checkSize(posts); err != nil {
		return nil, err
	}

	raw, err := s.responder.Classify(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &RawResponse{Model: s.responder.Model(), Response: raw}, nil
}

func (s *system) checkSize(posts []responder.PostRecord) error {
	if len(posts) == 0 {
		return ErrEmptyPosts
	}
	if s.opts.MaxPosts > 0 && len(posts) > s.opts.MaxPosts {
		return fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyPosts, len(posts), s.opts.MaxPosts)
	}
	return nil
}

// checkUUIDs rejects blank and repeated post uuids. A batch stores at most one
// classification per post.
func checkUUIDs(posts []responder.PostRecord) error {
	seen := make(map[string]int, len(posts))
	for i, p := range posts {
		id := strings.TrimSpace(p.UUID)
		if id == "" {
			return fmt.Errorf("%w: post %d has no uuid", ErrInvalidPosts, i)
		}
		if first, ok := seen[id]; ok {
			return fmt.Errorf("%w: uuid %q repeated at posts %d and %d", ErrInvalidPosts, id, first, i)
		}
		seen[id] = i
	}
	return nil
}

func (s *system) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Classification], error) {
	page.Normalize(s.opts.Pagination)
	return s.store.List(ctx, page, filters)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	return s.store.Find(ctx, id)
}

func (s *system) FindByPost(ctx context.Context, postUUID string) ([]Classification, error) {
	return s.store.FindByPost(ctx, postUUID)
}

func (s *system) FindBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.store.FindBatch(ctx, id)
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("classification deleted", "id", id)
	return nil
}

func (s *system) Stats(ctx context.Context, filters Filters, keywordLimit int) (*Stats, error) {
	if keywordLimit <= 0 {
		keywordLimit = DefaultKeywordLimit
	}
	keywordLimit = min(keywordLimit, MaxKeywordLimit)

	stats, err := s.store.Stats(ctx, filters, keywordLimit)
	if err != nil {
		return nil, err
	}
	stats.finish()
	return stats, nil
}
