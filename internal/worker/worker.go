package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/admin"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/queue"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/storage"
)

// ExportProcessor processes results export jobs: query submissions, build the
// CSV, archive it to S3 and mark the export record done. s3 may be nil, in
// which case the export completes without an archive key.
type ExportProcessor struct {
	repo   *admin.Repository
	s3     *storage.S3
	queue  *queue.Queue
	logger *zap.Logger
}

// NewExportProcessor creates a results export processor.
func NewExportProcessor(repo *admin.Repository, s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{repo: repo, s3: s3, queue: q, logger: logger}
}

// Process executes one export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	exp, err := p.repo.GetExport(ctx, payload.ExportID)
	if err != nil {
		return fmt.Errorf("fetch export: %w", err)
	}
	if exp == nil {
		return fmt.Errorf("export not found: %s", payload.ExportID)
	}
	if exp.Status == models.ExportCompleted {
		p.logger.Info("export already completed", zap.String("export_id", exp.ID.String()))
		return nil
	}

	rows, err := p.repo.ListSubmissions(ctx, payload.QuizSlug)
	if err != nil {
		return fmt.Errorf("query submissions: %w", err)
	}

	var buf bytes.Buffer
	if err := admin.WriteCSV(&buf, rows); err != nil {
		return fmt.Errorf("build csv: %w", err)
	}

	key := ""
	if p.s3 != nil {
		key = storage.ExportKey(exp.ID.String())
		if _, err := p.s3.Upload(ctx, p.s3.ExportsBucket(), key, "text/csv", &buf); err != nil {
			return fmt.Errorf("s3 upload: %w", err)
		}
	}

	if err := p.repo.CompleteExport(ctx, exp.ID, key, len(rows)); err != nil {
		return fmt.Errorf("update db: %w", err)
	}

	p.logger.Info("export completed",
		zap.String("export_id", exp.ID.String()),
		zap.Int("rows", len(rows)),
		zap.String("s3_key", key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. A job that
// exhausts its retries is failed in the DB so the dashboard stops polling it.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if job.Attempt+1 >= queue.MaxRetries {
				p.markFailed(ctx, job, err)
			}
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

func (p *ExportProcessor) markFailed(ctx context.Context, job *queue.Job, cause error) {
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := p.repo.FailExport(ctx, payload.ExportID, cause.Error()); err != nil {
		p.logger.Error("mark export failed", zap.Error(err), zap.String("export_id", payload.ExportID.String()))
	}
}
