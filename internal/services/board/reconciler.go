package board

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirewire/internal/bus"
	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

// DefaultMoveTimeout bounds how long a speculative move may stay
// unconfirmed before the reconciler treats it as failed.
const DefaultMoveTimeout = 10 * time.Second

type pendingMove struct {
	from uuid.UUID
	to   uuid.UUID
}

// Reconciler keeps one session's view of a requisition board consistent
// with server truth while moves are in flight.
//
// It is a two-state buffer: a confirmed snapshot (last server-derived
// board) plus a set of pending diffs, one per in-flight card. The displayed
// board is always confirmed-plus-diffs, so rolling a failed move back is
// dropping its diff, never reconstructing state. A card with a pending move
// cannot be moved again until the first move resolves.
type Reconciler struct {
	requisitionID uuid.UUID
	pipeline      ports.Pipeline
	boards        ports.Boards
	timeout       time.Duration

	mu        sync.Mutex
	confirmed domain.Board
	pending   map[uuid.UUID]pendingMove
}

func NewReconciler(requisitionID uuid.UUID, pipeline ports.Pipeline, boards ports.Boards, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = DefaultMoveTimeout
	}
	return &Reconciler{
		requisitionID: requisitionID,
		pipeline:      pipeline,
		boards:        boards,
		timeout:       timeout,
		pending:       make(map[uuid.UUID]pendingMove),
	}
}

// Refresh replaces the confirmed snapshot with a fresh server derivation.
// Pending diffs survive a refresh; they still reflect in-flight moves.
func (r *Reconciler) Refresh(ctx context.Context) error {
	snap, err := r.boards.Snapshot(ctx, r.requisitionID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.confirmed = snap
	r.mu.Unlock()
	return nil
}

// Board returns the displayed board: the confirmed snapshot with every
// pending move applied on top.
func (r *Reconciler) Board() domain.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	view := cloneBoard(r.confirmed)
	for appID, mv := range r.pending {
		applyMove(&view, appID, mv.from, mv.to)
	}
	return view
}

// Move submits a drop of application onto targetStage. The speculative
// diff is applied immediately against the last confirmed snapshot; the
// authoritative transition then runs with a bounded deadline. On success or
// failure the diff is retired and the board converges via refresh, so the
// displayed state afterwards is always derivable from server truth.
func (r *Reconciler) Move(ctx context.Context, actor string, applicationID, targetStageID uuid.UUID) error {
	r.mu.Lock()
	if _, inflight := r.pending[applicationID]; inflight {
		r.mu.Unlock()
		return domain.NewError(domain.CodeConflict, "a move for this application is still in flight")
	}
	source, onBoard := findStage(r.confirmed, applicationID)
	if !onBoard {
		r.mu.Unlock()
		// Stale view; converge before reporting.
		_ = r.Refresh(ctx)
		return domain.NewError(domain.CodeNotFound, "application is not on the board")
	}
	if source == targetStageID {
		r.mu.Unlock()
		return nil
	}
	r.pending[applicationID] = pendingMove{from: source, to: targetStageID}
	r.mu.Unlock()

	moveCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.pipeline.MoveToStage(moveCtx, actor, applicationID, targetStageID)

	r.mu.Lock()
	delete(r.pending, applicationID)
	r.mu.Unlock()

	// Converge with server truth either way: other actors may have mutated
	// sibling stages, and a failed move must not leave the optimistic state
	// visible.
	if refreshErr := r.Refresh(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.CodeUnknown, "move was not confirmed in time")
	}
	return err
}

// Watch refreshes the confirmed snapshot whenever an invalidation for this
// requisition's board arrives, until ctx is cancelled. Other topics are
// ignored; invalidations are scoped, never broadcast refreshes.
func (r *Reconciler) Watch(ctx context.Context, b *bus.Bus) {
	msgs, cancel := b.Subscribe()
	defer cancel()
	topic := bus.BoardTopic(r.requisitionID)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if msg.Topic != topic {
				continue
			}
			if err := r.Refresh(ctx); err != nil {
				log.Printf("board refresh for %s: %v", r.requisitionID, err)
			}
		}
	}
}

// InFlight reports whether a move for the application is outstanding.
func (r *Reconciler) InFlight(applicationID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[applicationID]
	return ok
}

func findStage(b domain.Board, applicationID uuid.UUID) (uuid.UUID, bool) {
	for _, col := range b.Columns {
		for _, app := range col.Applications {
			if app.ID == applicationID {
				return col.Stage.ID, true
			}
		}
	}
	return uuid.UUID{}, false
}

func cloneBoard(b domain.Board) domain.Board {
	out := b
	out.Columns = make([]domain.BoardColumn, len(b.Columns))
	for i, col := range b.Columns {
		out.Columns[i] = col
		out.Columns[i].Applications = append([]domain.Application(nil), col.Applications...)
	}
	return out
}

func applyMove(b *domain.Board, applicationID, from, to uuid.UUID) {
	var moved *domain.Application
	for i := range b.Columns {
		col := &b.Columns[i]
		if col.Stage.ID != from {
			continue
		}
		for j, app := range col.Applications {
			if app.ID == applicationID {
				moved = &app
				col.Applications = append(col.Applications[:j], col.Applications[j+1:]...)
				col.Count--
				break
			}
		}
	}
	if moved == nil {
		return
	}
	for i := range b.Columns {
		col := &b.Columns[i]
		if col.Stage.ID == to {
			stageID := col.Stage.ID
			moved.CurrentStageID = &stageID
			col.Applications = append(col.Applications, *moved)
			col.Count++
			return
		}
	}
}
