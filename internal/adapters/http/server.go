// Package httpadapter exposes the pipeline core over REST. Transport only:
// decode, validate, delegate to ports, map typed errors to status codes.
package httpadapter

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

type Server struct {
	pipeline ports.Pipeline
	boards   ports.Boards
	scoring  ports.Scoring
	events   ports.EventRepository
	scores   ports.ScoreRepository
	jobs     ports.RescoreJobRepository
	validate *validator.Validate
}

func New(pipeline ports.Pipeline, boards ports.Boards, scoring ports.Scoring,
	events ports.EventRepository, scores ports.ScoreRepository, jobs ports.RescoreJobRepository) *Server {
	return &Server{
		pipeline: pipeline,
		boards:   boards,
		scoring:  scoring,
		events:   events,
		scores:   scores,
		jobs:     jobs,
		validate: validator.New(),
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/requisitions/{id}", func(r chi.Router) {
		r.Get("/board", s.handleBoard)
		r.Post("/rescore", s.handleEnqueueRescore)
		r.Get("/rescore/{jobID}", s.handleRescoreJob)
	})

	r.Route("/applications/{id}", func(r chi.Router) {
		r.Post("/move", s.handleMove)
		r.Post("/reject", s.handleReject)
		r.Post("/withdraw", s.handleWithdraw)
		r.Post("/hire", s.handleHire)
		r.Post("/star", s.handleStar)
		r.Post("/rescore", s.handleRescore)
		r.Get("/events", s.handleEvents)
		r.Get("/score", s.handleScore)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding JSON response: %v", err)
	}
}

// errorResponse writes the structured failure envelope. The error code is
// surfaced verbatim; the message only when it is a typed domain error whose
// text is safe end-user content, a generic fallback otherwise.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)
	message := "something went wrong"
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	s.jsonResponse(w, httpStatus(code), map[string]any{
		"success": false,
		"error":   string(code),
		"message": message,
	})
}

// httpStatus maps a domain error code to an HTTP status.
func httpStatus(code domain.ErrorCode) int {
	switch code {
	case domain.CodeTerminalStatus, domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeStageNotInPipeline, domain.CodeInvalidTransition, domain.CodeInsufficientData:
		return http.StatusUnprocessableEntity
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
