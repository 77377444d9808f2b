package httpadapter_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "hirewire/internal/adapters/http"
	"hirewire/internal/adapters/memory"
	"hirewire/internal/bus"
	"hirewire/internal/domain"
	boardsvc "hirewire/internal/services/board"
	pipesvc "hirewire/internal/services/pipeline"
	scoresvc "hirewire/internal/services/scoring"
)

type apiFixture struct {
	store   *memory.Store
	handler http.Handler
	req     domain.Requisition
	stages  map[domain.StageType]domain.Stage
	app     domain.Application
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	req := domain.Requisition{
		ID:         uuid.New(),
		PipelineID: uuid.New(),
		Title:      "Platform Engineer",
		Headcount:  1,
		Status:     "open",
		Criteria: []domain.Criterion{
			{Name: "Core", Weight: 1, Keywords: []string{"go"}},
		},
	}
	store.PutRequisition(req)

	stages := make(map[domain.StageType]domain.Stage)
	for i, st := range []domain.StageType{domain.StageApplied, domain.StageScreening, domain.StageOffer} {
		stage := domain.Stage{ID: uuid.New(), PipelineID: req.PipelineID, Name: string(st), Order: i, StageType: st}
		stages[st] = stage
		store.PutStage(stage)
	}

	applied := stages[domain.StageApplied]
	app := domain.Application{
		ID:              uuid.New(),
		RequisitionID:   req.ID,
		PipelineID:      req.PipelineID,
		CandidateName:   "Riley Chen",
		CandidateSkills: []string{"Go"},
		Status:          domain.StatusApplied,
		CurrentStageID:  &applied.ID,
		AppliedAt:       time.Now(),
	}
	store.PutApplication(app)

	invalidations := bus.New()
	pipe := pipesvc.New(store, store, invalidations)
	boards := boardsvc.New(store, store, store)
	scoring := scoresvc.New(store, store, store, scoresvc.CriteriaScorer{}, invalidations)
	srv := httpadapter.New(pipe, boards, scoring, store, store, store)

	return &apiFixture{store: store, handler: srv.Routes(), req: req, stages: stages, app: app}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, withActor bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if withActor {
		req.Header.Set("X-Actor", "recruiter1")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandleMove(t *testing.T) {
	f := newAPIFixture(t)
	screening := f.stages[domain.StageScreening]

	t.Run("moves the application", func(t *testing.T) {
		body := fmt.Sprintf(`{"stage_id":%q}`, screening.ID)
		w := f.do(t, http.MethodPost, "/applications/"+f.app.ID.String()+"/move", body, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody(t, w)
		assert.Equal(t, true, resp["success"])
		appResp := resp["application"].(map[string]any)
		assert.Equal(t, "screening", appResp["status"])
		assert.Equal(t, screening.ID.String(), appResp["current_stage_id"])
	})

	t.Run("missing actor is unauthorized", func(t *testing.T) {
		body := fmt.Sprintf(`{"stage_id":%q}`, screening.ID)
		w := f.do(t, http.MethodPost, "/applications/"+f.app.ID.String()+"/move", body, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Unauthorized", resp["error"])
	})

	t.Run("invalid application id is not found", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/applications/not-a-uuid/move", `{"stage_id":"x"}`, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("terminal application reports TerminalStatus verbatim", func(t *testing.T) {
		hired := f.app
		hired.Status = domain.StatusHired
		hired.Version = 1 // one move happened above
		f.store.PutApplication(hired)

		body := fmt.Sprintf(`{"stage_id":%q}`, screening.ID)
		w := f.do(t, http.MethodPost, "/applications/"+f.app.ID.String()+"/move", body, true)
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "TerminalStatus", resp["error"])
	})
}

func TestHandleRejectAndEvents(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/applications/"+f.app.ID.String()+"/reject", `{"reason":"position filled"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/applications/"+f.app.ID.String()+"/events", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	events := resp["events"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	assert.Equal(t, "rejected", ev["event_type"])
	assert.Equal(t, "recruiter1", ev["actor"])
}

func TestHandleBoard(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodGet, "/requisitions/"+f.req.ID.String()+"/board", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, f.req.ID.String(), resp["requisition_id"])
	assert.Equal(t, false, resp["closed"])
	columns := resp["columns"].([]any)
	require.Len(t, columns, 3)
	first := columns[0].(map[string]any)
	assert.Equal(t, "applied", first["name"])
	assert.Equal(t, float64(1), first["count"])
}

func TestHandleRescore(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/applications/"+f.app.ID.String()+"/rescore", "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	assert.InDelta(t, 100.0, resp["overall"].(float64), 0.001)

	w = f.do(t, http.MethodGet, "/applications/"+f.app.ID.String()+"/score", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	// An application that was never scored has no score to fetch.
	other := f.app
	other.ID = uuid.New()
	f.store.PutApplication(other)
	w = f.do(t, http.MethodGet, "/applications/"+other.ID.String()+"/score", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleEnqueueRescore(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/requisitions/"+f.req.ID.String()+"/rescore", "", true)
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decodeBody(t, w)
	jobID := resp["job_id"].(string)

	w = f.do(t, http.MethodGet, "/requisitions/"+f.req.ID.String()+"/rescore/"+jobID, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeBody(t, w)
	assert.Equal(t, "queued", status["status"])
}
