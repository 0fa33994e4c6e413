package gene

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
	"github.com/kailas-cloud/genedex/internal/metrics"
)

type iterState int

const (
	stateInit iterState = iota
	stateStreaming
	stateDone
)

type iteratorConfig struct {
	repo      Scroller
	index     string
	body      query.Body
	keepAlive time.Duration
	stop      int
	skip      int
	now       func() time.Time
	logger    *zap.Logger
}

// Iterator is a forward-only, single-pass walk over a result set. It owns
// its server-side cursor and must not be shared between goroutines.
//
//	it, _ := svc.Scroll(opts)
//	defer it.Close(ctx)
//	for it.Next(ctx) {
//		handle(it.Batch())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	cfg iteratorConfig

	state     iterState
	closed    bool
	scrollID  string
	refreshed time.Time
	started   time.Time
	batch     []gene.Document
	batches   int
	total     int
	produced  int
	skipped   int
	err       error
}

func newIterator(cfg iteratorConfig) *Iterator {
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return &Iterator{cfg: cfg}
}

// Next fetches the next batch. It returns false when the walk is over or
// failed; Err tells the two apart.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.closed {
		if it.err == nil {
			it.err = domain.ErrCursorClosed
		}
		return false
	}

	for it.state != stateDone {
		page, ok := it.fetch(ctx)
		if !ok {
			return false
		}

		it.state = stateStreaming
		it.refreshed = it.cfg.now()
		if page.ScrollID != "" {
			it.scrollID = page.ScrollID
		}
		if len(page.Docs) == 0 {
			it.batch = nil
			it.finish(ctx)
			return false
		}

		docs := it.skipLeading(page.Docs)
		if len(docs) == 0 {
			continue
		}

		it.batch = docs
		it.batches++
		it.produced += len(docs)
		metrics.ScrollBatchesTotal.Inc()
		metrics.ScrollDocumentsTotal.Add(float64(len(docs)))
		it.cfg.logger.Debug("Scroll batch",
			zap.Int("batch", it.batches),
			zap.Int("from", it.cfg.skip+it.produced-len(docs)+1),
			zap.Int("to", it.cfg.skip+it.produced),
			zap.Int("total", it.total),
		)
		return true
	}
	return false
}

// fetch runs the request for the current state. On false the iterator is
// already finished or failed.
func (it *Iterator) fetch(ctx context.Context) (*result.ScrollPage, bool) {
	var (
		page *result.ScrollPage
		err  error
	)
	if it.state == stateInit {
		it.started = it.cfg.now()
		page, err = it.cfg.repo.OpenScroll(ctx, it.cfg.index, it.cfg.body, it.cfg.keepAlive)
		if err == nil {
			it.total = page.Total
			it.cfg.logger.Info("Scroll opened",
				zap.String("index", it.cfg.index),
				zap.Int("total", page.Total),
				zap.Int("skip", it.cfg.skip),
				zap.Duration("keep_alive", it.cfg.keepAlive),
			)
		}
	} else {
		if it.cfg.stop > 0 && it.produced > it.cfg.stop {
			it.finish(ctx)
			return nil, false
		}
		if idle := it.cfg.now().Sub(it.refreshed); idle > it.cfg.keepAlive {
			it.fail(ctx, fmt.Errorf("%w: idle for %s, keep-alive is %s", domain.ErrCursorExpired, idle, it.cfg.keepAlive))
			return nil, false
		}
		page, err = it.cfg.repo.Scroll(ctx, it.scrollID, it.cfg.keepAlive)
	}
	if err != nil {
		it.fail(ctx, err)
		return nil, false
	}
	return page, true
}

// skipLeading drops the documents still owed to the skip offset. Scroll
// requests cannot carry "from", so the offset is applied here.
func (it *Iterator) skipLeading(docs []gene.Document) []gene.Document {
	n := min(it.cfg.skip-it.skipped, len(docs))
	it.skipped += n
	return docs[n:]
}

// Batch returns the documents fetched by the last successful Next.
func (it *Iterator) Batch() []gene.Document { return it.batch }

// Documents flattens the walk into single documents. A failure is yielded
// once, with a nil document, and ends the sequence.
func (it *Iterator) Documents(ctx context.Context) iter.Seq2[gene.Document, error] {
	return func(yield func(gene.Document, error) bool) {
		for it.Next(ctx) {
			for _, doc := range it.batch {
				if !yield(doc, nil) {
					return
				}
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Err returns the error that ended the walk, if any.
func (it *Iterator) Err() error { return it.err }

// Total returns the match count reported when the scroll was opened.
func (it *Iterator) Total() int { return it.total }

// Produced returns how many documents have been yielded so far.
func (it *Iterator) Produced() int { return it.produced }

// Batches returns how many non-empty batches have been yielded so far.
func (it *Iterator) Batches() int { return it.batches }

// Close releases the server-side cursor. It is safe to call more than once.
func (it *Iterator) Close(ctx context.Context) error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.state == stateDone {
		return nil
	}
	it.state = stateDone
	return it.release(ctx)
}

func (it *Iterator) finish(ctx context.Context) {
	it.state = stateDone
	if err := it.release(ctx); err != nil {
		it.cfg.logger.Warn("Failed to clear scroll", zap.Error(err))
	}
	it.cfg.logger.Info("Scroll finished",
		zap.String("index", it.cfg.index),
		zap.Int("produced", it.produced),
		zap.Int("batches", it.batches),
		zap.Duration("elapsed", it.cfg.now().Sub(it.started)),
	)
}

func (it *Iterator) fail(ctx context.Context, err error) {
	it.err = err
	it.state = stateDone
	it.batch = nil
	if !errors.Is(err, domain.ErrCursorExpired) {
		_ = it.release(ctx)
	}
	it.cfg.logger.Warn("Scroll failed",
		zap.String("index", it.cfg.index),
		zap.Int("produced", it.produced),
		zap.Error(err),
	)
}

func (it *Iterator) release(ctx context.Context) error {
	if it.scrollID == "" {
		return nil
	}
	id := it.scrollID
	it.scrollID = ""
	return it.cfg.repo.ClearScroll(ctx, id)
}
