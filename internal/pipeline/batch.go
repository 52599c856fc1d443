package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/model"
)

// Auditor audits a single URL. *Pipeline implements it.
type Auditor interface {
	Run(ctx context.Context, url string) (*model.AuditResult, error)
}

// BatchResult is the outcome of one URL of a batch.
// Exactly one of Result and Err is set.
type BatchResult struct {
	URL    string
	Result *model.AuditResult
	Err    error
}

// BatchProcessor audits many URLs concurrently with a bounded number of
// audits in flight. A failing URL never cancels the others.
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent audits.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor running audits with auditor.
func NewBatchProcessor(auditor Auditor, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		auditor:     auditor,
		concurrency: config.DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch audits urls and returns one BatchResult per URL in input order.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) []BatchResult {
	results := make([]BatchResult, len(urls))
	bp.ProcessBatchWithCallback(ctx, urls, func(r BatchResult, i int) {
		results[i] = r
	})
	return results
}

// ProcessBatchWithCallback audits urls and calls callback as each audit
// finishes, with the index of the URL in urls. Callbacks run on worker
// goroutines and may be called concurrently, but never twice for one index.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, urls []string, callback func(BatchResult, int)) {
	bp.logger.Info("starting batch audit",
		"total", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			r := BatchResult{URL: url}
			if err := ctx.Err(); err != nil {
				r.Err = err
				callback(r, i)
				return nil
			}

			bp.logger.Info("auditing",
				"url", url,
				"index", i+1,
				"total", len(urls),
			)

			r.Result, r.Err = bp.auditor.Run(ctx, url)
			if r.Err != nil {
				bp.logger.Warn("audit failed", "url", url, "error", r.Err)
			} else {
				bp.logger.Info("audit completed", "url", url, "score", r.Result.Score)
			}
			callback(r, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers record errors in BatchResult

	bp.logger.Info("batch audit complete",
		"total", len(urls),
		"elapsed", time.Since(startTime),
	)
}
