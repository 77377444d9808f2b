// Package rescorerunner processes queued batch-rescore jobs in the
// background: claim, rescore every open application of the requisition,
// mark completed or failed.
package rescorerunner

import (
	"context"
	"log"
	"time"

	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

// Processor performs the rescore work for one claimed job.
type Processor interface {
	Process(ctx context.Context, job domain.RescoreJob) error
}

// BatchProcessor rescores every non-terminal application of the job's
// requisition, reporting progress as it goes. Per-application failures
// with insufficient data are skipped, not fatal: a batch should not abort
// because one candidate profile is empty.
type BatchProcessor struct {
	Apps    ports.ApplicationRepository
	Scoring ports.Scoring
	Jobs    ports.RescoreJobRepository
}

func (p BatchProcessor) Process(ctx context.Context, job domain.RescoreJob) error {
	apps, err := p.Apps.ListApplicationsByRequisition(ctx, job.RequisitionID)
	if err != nil {
		return err
	}
	var open []domain.Application
	for _, app := range apps {
		if !app.Status.Terminal() {
			open = append(open, app)
		}
	}
	if err := p.Jobs.UpdateRescoreProgress(ctx, job.ID, len(open), 0); err != nil {
		return err
	}
	for i, app := range open {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.Scoring.Rescore(ctx, app.ID); err != nil {
			if domain.IsCode(err, domain.CodeInsufficientData) {
				log.Printf("rescore job %s: skipping %s: %v", job.ID, app.ID, err)
			} else {
				return err
			}
		}
		if err := p.Jobs.UpdateRescoreProgress(ctx, job.ID, len(open), i+1); err != nil {
			return err
		}
	}
	return nil
}

// Run starts worker goroutines that claim jobs and process them.
func Run(ctx context.Context, repo ports.RescoreJobRepository, processor Processor, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan domain.RescoreJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNextRescore(ctx)
					if err != nil {
						log.Printf("rescore claim error: %v", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job); err != nil {
					_ = repo.MarkRescoreFailed(ctx, job.ID, err.Error())
					log.Printf("rescore worker %d: job %s failed: %v", idx, job.ID, err)
					continue
				}
				if err := repo.MarkRescoreCompleted(ctx, job.ID); err != nil {
					log.Printf("rescore worker %d: complete err: %v", idx, err)
				}
			}
		}(i)
	}
}

// ProcessInline claims and processes jobs synchronously until the queue is
// drained. Used by tests and one-shot maintenance runs.
func ProcessInline(ctx context.Context, repo ports.RescoreJobRepository, processor Processor) error {
	for {
		job, found, err := repo.ClaimNextRescore(ctx)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		if err := processor.Process(ctx, job); err != nil {
			if markErr := repo.MarkRescoreFailed(ctx, job.ID, err.Error()); markErr != nil {
				return markErr
			}
			continue
		}
		if err := repo.MarkRescoreCompleted(ctx, job.ID); err != nil {
			return err
		}
	}
}
