package rescorerunner_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirewire/internal/adapters/memory"
	"hirewire/internal/bus"
	"hirewire/internal/domain"
	"hirewire/internal/services/scoring"
	"hirewire/internal/workers/rescorerunner"
)

type runnerFixture struct {
	store *memory.Store
	proc  rescorerunner.BatchProcessor
	req   domain.Requisition
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	store := memory.New()
	req := domain.Requisition{
		ID:         uuid.New(),
		PipelineID: uuid.New(),
		Title:      "Backend Engineer",
		Status:     "open",
		Criteria: []domain.Criterion{
			{Name: "Core", Weight: 1, Keywords: []string{"go"}},
		},
	}
	store.PutRequisition(req)

	svc := scoring.New(store, store, store, scoring.CriteriaScorer{}, bus.New())
	return &runnerFixture{
		store: store,
		proc:  rescorerunner.BatchProcessor{Apps: store, Scoring: svc, Jobs: store},
		req:   req,
	}
}

func (f *runnerFixture) addApplication(status domain.Status, skills []string) domain.Application {
	app := domain.Application{
		ID:              uuid.New(),
		RequisitionID:   f.req.ID,
		PipelineID:      f.req.PipelineID,
		CandidateSkills: skills,
		Status:          status,
		AppliedAt:       time.Now(),
	}
	f.store.PutApplication(app)
	return app
}

type failingScoring struct{}

func (failingScoring) Rescore(context.Context, uuid.UUID) (domain.CandidateScore, error) {
	return domain.CandidateScore{}, domain.NewError(domain.CodeUnknown, "scorer unavailable")
}

func TestProcessInline(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a job and scores every open application", func(t *testing.T) {
		f := newRunnerFixture(t)
		a := f.addApplication(domain.StatusScreening, []string{"Go"})
		b := f.addApplication(domain.StatusInterview, []string{"Go", "Rust"})
		rejected := f.addApplication(domain.StatusRejected, []string{"Go"})

		jobID, err := f.store.EnqueueRescore(ctx, f.req.ID)
		require.NoError(t, err)
		require.NoError(t, rescorerunner.ProcessInline(ctx, f.store, f.proc))

		job, err := f.store.GetRescoreJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobCompleted, job.Status)
		assert.Equal(t, 2, job.Total)
		assert.Equal(t, 2, job.Completed)

		for _, id := range []uuid.UUID{a.ID, b.ID} {
			score, err := f.store.GetScore(ctx, id)
			require.NoError(t, err)
			assert.NotNil(t, score)
		}
		score, err := f.store.GetScore(ctx, rejected.ID)
		require.NoError(t, err)
		assert.Nil(t, score, "terminal applications are not scored")
	})

	t.Run("skips applications with insufficient data", func(t *testing.T) {
		f := newRunnerFixture(t)
		scored := f.addApplication(domain.StatusScreening, []string{"Go"})
		empty := f.addApplication(domain.StatusScreening, nil)

		jobID, err := f.store.EnqueueRescore(ctx, f.req.ID)
		require.NoError(t, err)
		require.NoError(t, rescorerunner.ProcessInline(ctx, f.store, f.proc))

		job, err := f.store.GetRescoreJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobCompleted, job.Status)
		assert.Equal(t, 2, job.Completed)

		score, err := f.store.GetScore(ctx, scored.ID)
		require.NoError(t, err)
		assert.NotNil(t, score)
		score, err = f.store.GetScore(ctx, empty.ID)
		require.NoError(t, err)
		assert.Nil(t, score)
	})

	t.Run("unknown requisition completes with an empty batch", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.addApplication(domain.StatusScreening, []string{"Go"})

		jobID, err := f.store.EnqueueRescore(ctx, uuid.New())
		require.NoError(t, err)
		require.NoError(t, rescorerunner.ProcessInline(ctx, f.store, f.proc))

		job, err := f.store.GetRescoreJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobCompleted, job.Status)
		assert.Zero(t, job.Total)
	})

	t.Run("marks the job failed on unrecoverable errors", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.addApplication(domain.StatusScreening, []string{"Go"})

		jobID, err := f.store.EnqueueRescore(ctx, f.req.ID)
		require.NoError(t, err)

		proc := rescorerunner.BatchProcessor{Apps: f.store, Scoring: failingScoring{}, Jobs: f.store}
		require.NoError(t, rescorerunner.ProcessInline(ctx, f.store, proc))

		job, err := f.store.GetRescoreJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.Contains(t, *job.ErrorMessage, "scorer unavailable")
	})

	t.Run("drains multiple queued jobs", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.addApplication(domain.StatusScreening, []string{"Go"})

		first, err := f.store.EnqueueRescore(ctx, f.req.ID)
		require.NoError(t, err)
		second, err := f.store.EnqueueRescore(ctx, f.req.ID)
		require.NoError(t, err)

		require.NoError(t, rescorerunner.ProcessInline(ctx, f.store, f.proc))
		for _, id := range []uuid.UUID{first, second} {
			job, err := f.store.GetRescoreJob(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.JobCompleted, job.Status)
		}
	})
}

func TestRunProcessesQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newRunnerFixture(t)
	f.addApplication(domain.StatusScreening, []string{"Go"})
	jobID, err := f.store.EnqueueRescore(ctx, f.req.ID)
	require.NoError(t, err)

	rescorerunner.Run(ctx, f.store, f.proc, 2, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		job, err := f.store.GetRescoreJob(ctx, jobID)
		return err == nil && job.Status == domain.JobCompleted
	}, 2*time.Second, 10*time.Millisecond)
}
