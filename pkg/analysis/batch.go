package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/notnil/chess"

	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

// ErrBatchCancelled reports a batch torn down before completing.
var ErrBatchCancelled = errors.New("batch analysis cancelled")

// TaskStatus is the lifecycle state of one batch position task.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskInFlight
	TaskDone
	TaskCancelled
)

// Task is one position of a batch analysis. Generation is assigned at
// dispatch time and never reused.
type Task struct {
	Index      int
	FEN        string
	Status     TaskStatus
	Generation uint64
	Evaluation *Evaluation
	BestMove   string

	terminal  bool
	synthetic engine.Score
	position  *chess.Position
}

// Batch walks an ordered list of game positions through the engine exactly
// once each. All mutation happens on the scheduler's event loop; the mutex
// only guards the snapshot accessors used by other goroutines.
type Batch struct {
	mu        sync.Mutex
	tasks     []*Task
	records   []*MoveRecord
	completed int
	finished  bool
	err       error

	doneCh     chan struct{}
	thresholds Thresholds
}

// newBatch expands a game into N+1 position tasks (the position before
// move 1 through the position after move N) and N empty move records.
func newBatch(game *chess.Game, thresholds Thresholds) (*Batch, error) {
	positions := game.Positions()
	moves := game.Moves()
	if len(positions) != len(moves)+1 {
		return nil, errors.New("game positions and moves are out of sync")
	}
	b := &Batch{
		doneCh:     make(chan struct{}),
		thresholds: thresholds,
	}
	for i, pos := range positions {
		task := &Task{Index: i, FEN: pos.String(), position: pos}
		if score, ok := terminalScore(pos); ok {
			task.terminal = true
			task.synthetic = score
		}
		b.tasks = append(b.tasks, task)
	}
	for i, move := range moves {
		b.records = append(b.records, &MoveRecord{
			Ply:      i + 1,
			Notation: chess.AlgebraicNotation{}.Encode(positions[i], move),
		})
	}
	return b, nil
}

// terminalScore substitutes the engine verdict for a finished position: the
// side to move at a checkmate is the loser, a stalemate is dead level. A
// finished position must never be sent to the engine.
func terminalScore(pos *chess.Position) (engine.Score, bool) {
	switch pos.Status() {
	case chess.Checkmate:
		return engine.MateIn(0), true
	case chess.Stalemate:
		return engine.Centipawns(0), true
	}
	return engine.Score{}, false
}

// nextPending returns the next task to dispatch, nil when the queue is
// drained.
func (b *Batch) nextPending() *Task {
	for _, task := range b.tasks {
		if task.Status == TaskPending {
			return task
		}
	}
	return nil
}

// complete marks a task done and folds its evaluation into the move
// records: task i carries the pre-evaluation of move i and the
// post-evaluation of move i-1, so a single task updates up to two records.
func (b *Batch) complete(task *Task, eval *Evaluation, bestMove string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task.Status = TaskDone
	task.Evaluation = eval
	task.BestMove = bestMove
	b.completed++

	i := task.Index
	if i < len(b.records) {
		rec := b.records[i]
		rec.Pre = eval
		rec.BestAlternative = bestAlternative(task)
		rec.refresh(b.thresholds)
	}
	if i > 0 {
		rec := b.records[i-1]
		rec.Post = eval
		rec.refresh(b.thresholds)
	}
}

// bestAlternative renders the engine's preferred move in SAN. The PV head
// is used when present, the bare best-move token otherwise.
func bestAlternative(task *Task) string {
	if task.Evaluation == nil {
		return ""
	}
	token := task.BestMove
	if len(task.Evaluation.PV) > 0 {
		token = task.Evaluation.PV[0]
	}
	if token == "" || task.position == nil {
		return token
	}
	move, err := chess.UCINotation{}.Decode(task.position, token)
	if err != nil {
		return token
	}
	return chess.AlgebraicNotation{}.Encode(task.position, move)
}

// cancelRemaining marks every unfinished task cancelled.
func (b *Batch) cancelRemaining() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, task := range b.tasks {
		if task.Status == TaskPending || task.Status == TaskInFlight {
			task.Status = TaskCancelled
		}
	}
}

// finish closes the batch exactly once.
func (b *Batch) finish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	b.err = err
	close(b.doneCh)
}

// Progress is completed tasks over total tasks.
func (b *Batch) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tasks) == 0 {
		return 1
	}
	return float64(b.completed) / float64(len(b.tasks))
}

// Done reports whether the batch has finished or been cancelled.
func (b *Batch) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Err returns the terminal error, if any.
func (b *Batch) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Wait blocks until the batch finishes or the context expires.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.doneCh:
		return b.Err()
	}
}

// Records returns a snapshot of the per-move records.
func (b *Batch) Records() []MoveRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MoveRecord, len(b.records))
	for i, rec := range b.records {
		out[i] = *rec
	}
	return out
}

// Tasks returns a snapshot of the position tasks.
func (b *Batch) Tasks() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Task, len(b.tasks))
	for i, task := range b.tasks {
		out[i] = *task
	}
	return out
}
