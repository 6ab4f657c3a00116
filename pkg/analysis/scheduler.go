package analysis

import (
	"errors"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

var (
	// ErrBatchActive rejects a second batch while one holds the session.
	ErrBatchActive = errors.New("batch analysis already running")
	// ErrNoBatch reports a cancel with nothing to cancel.
	ErrNoBatch = errors.New("no batch analysis running")
	// ErrClosed reports use of a scheduler after Close.
	ErrClosed = errors.New("scheduler closed")
)

// EngineClient is the slice of the engine session the scheduler drives.
type EngineClient interface {
	SetPosition(fen string) error
	Search(depth int) error
	Stop() error
	Events() <-chan engine.Event
}

type schedulerMode int

const (
	modeIdle schedulerMode = iota
	modeLive
	modeBatch
)

// LiveUpdate is one live-mode evaluation snapshot.
type LiveUpdate struct {
	Generation uint64     `json:"generation"`
	FEN        string     `json:"fen"`
	Evaluation Evaluation `json:"evaluation"`
	BestMove   string     `json:"best_move,omitempty"`
	Final      bool       `json:"final"`
}

// Scheduler arbitrates the single engine session between live analysis of
// one tracked position and batch analysis of a whole game.
//
// One goroutine services both the engine's event stream and all external
// calls (posted as closures on ops), so every state mutation happens on a
// single control path. The engine does not tag replies with a request
// identity: each dispatched search gets a monotonic generation, a FIFO of
// outstanding generations attributes inbound events to the search that
// produced them, and events whose generation is no longer current are
// discarded.
type Scheduler struct {
	client     EngineClient
	log        zerolog.Logger
	depth      int
	thresholds Thresholds

	ops       chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	updates   chan LiveUpdate

	mode        schedulerMode
	generation  uint64
	outstanding []uint64
	inflight    map[uint64]*Task

	liveFEN   string
	liveGen   uint64
	liveEval  *Evaluation
	liveBest  string
	liveFinal bool

	pendingLive    string
	hasPendingLive bool

	batch *Batch
}

// NewScheduler starts the scheduler's event loop over the given client.
func NewScheduler(client EngineClient, depth int, thresholds Thresholds, logger zerolog.Logger) *Scheduler {
	if depth <= 0 {
		depth = 18
	}
	s := &Scheduler{
		client:     client,
		log:        logger,
		depth:      depth,
		thresholds: thresholds,
		ops:        make(chan func()),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		updates:    make(chan LiveUpdate, 16),
		inflight:   make(map[uint64]*Task),
	}
	go s.run()
	return s
}

func (s *Scheduler) run() {
	defer close(s.stopped)
	events := s.client.Events()
	for {
		select {
		case op := <-s.ops:
			op()
		case ev, ok := <-events:
			if !ok {
				s.log.Warn().Msg("engine event stream closed")
				s.failBatch(engine.ErrUnavailable)
				events = nil
				continue
			}
			s.handleEvent(ev)
		case <-s.quit:
			_ = s.client.Stop()
			s.hasPendingLive = false
			s.failBatch(ErrClosed)
			close(s.updates)
			return
		}
	}
}

// do runs op on the scheduler's control path and waits for it.
func (s *Scheduler) do(op func()) error {
	done := make(chan struct{})
	select {
	case s.ops <- func() { op(); close(done) }:
	case <-s.stopped:
		return ErrClosed
	}
	<-done
	return nil
}

// dispatch issues a position+search pair under a fresh generation.
func (s *Scheduler) dispatch(fen string) uint64 {
	s.generation++
	gen := s.generation
	s.outstanding = append(s.outstanding, gen)
	if err := s.client.SetPosition(fen); err != nil {
		s.log.Warn().Err(err).Uint64("generation", gen).Msg("set position failed")
	}
	if err := s.client.Search(s.depth); err != nil {
		s.log.Warn().Err(err).Uint64("generation", gen).Msg("search failed")
	}
	return gen
}

// handleEvent attributes an inbound event to the oldest outstanding search.
// Searches answer strictly in dispatch order, and a stopped search still
// terminates with a best-move event, so the FIFO head is always the search
// the engine is currently answering for.
func (s *Scheduler) handleEvent(ev engine.Event) {
	if len(s.outstanding) == 0 {
		return
	}
	gen := s.outstanding[0]
	switch ev.Type {
	case engine.EventProgress:
		s.handleProgress(gen, ev)
	case engine.EventBestMove:
		s.outstanding = s.outstanding[1:]
		s.handleBestMove(gen, ev)
	}
}

func (s *Scheduler) handleProgress(gen uint64, ev engine.Event) {
	eval := &Evaluation{Score: ev.Score, Depth: ev.Depth, PV: ev.PV}
	if task, ok := s.inflight[gen]; ok {
		// Last write wins, whatever depth order the engine reports in.
		task.Evaluation = eval
		return
	}
	if s.mode == modeLive && gen == s.liveGen {
		s.liveEval = eval
		s.liveFinal = false
		s.publish(LiveUpdate{Generation: gen, FEN: s.liveFEN, Evaluation: *eval})
	}
}

func (s *Scheduler) handleBestMove(gen uint64, ev engine.Event) {
	if task, ok := s.inflight[gen]; ok {
		delete(s.inflight, gen)
		if s.batch != nil {
			s.batch.complete(task, task.Evaluation, ev.Move)
			s.advanceBatch()
		}
		return
	}
	if s.mode == modeLive && gen == s.liveGen {
		s.liveBest = ev.Move
		s.liveFinal = true
		if s.liveEval != nil {
			s.publish(LiveUpdate{
				Generation: gen,
				FEN:        s.liveFEN,
				Evaluation: *s.liveEval,
				BestMove:   ev.Move,
				Final:      true,
			})
		}
		return
	}
	s.log.Debug().Uint64("generation", gen).Str("move", ev.Move).Msg("discarding stale best move")
}

// SetLivePosition makes fen the tracked live position, superseding any
// running live search. While a batch holds the session only the latest
// requested position is remembered; it is dispatched when the batch ends.
func (s *Scheduler) SetLivePosition(fen string) error {
	return s.do(func() {
		if s.mode == modeBatch {
			s.pendingLive = fen
			s.hasPendingLive = true
			return
		}
		s.startLive(fen)
	})
}

func (s *Scheduler) startLive(fen string) {
	s.mode = modeLive
	s.liveFEN = fen
	s.liveEval = nil
	s.liveBest = ""
	s.liveFinal = false

	if score, ok := terminalScoreFEN(fen); ok {
		s.generation++
		s.liveGen = s.generation
		s.liveEval = &Evaluation{Score: score}
		s.liveFinal = true
		s.publish(LiveUpdate{Generation: s.liveGen, FEN: fen, Evaluation: *s.liveEval, Final: true})
		return
	}

	_ = s.client.Stop()
	s.liveGen = s.dispatch(fen)
}

// terminalScoreFEN checks a live position for checkmate/stalemate without
// involving the engine. Unparseable FENs are left to the engine.
func terminalScoreFEN(fen string) (engine.Score, bool) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return engine.Score{}, false
	}
	return terminalScore(chess.NewGame(opt).Position())
}

// LatestEvaluation returns the retained evaluation for the current live
// position, if one has arrived.
func (s *Scheduler) LatestEvaluation() (LiveUpdate, bool) {
	var upd LiveUpdate
	var ok bool
	err := s.do(func() {
		if s.liveEval == nil {
			return
		}
		upd = LiveUpdate{
			Generation: s.liveGen,
			FEN:        s.liveFEN,
			Evaluation: *s.liveEval,
			BestMove:   s.liveBest,
			Final:      s.liveFinal,
		}
		ok = true
	})
	if err != nil {
		return LiveUpdate{}, false
	}
	return upd, ok
}

// Updates returns the live update stream. Sends never block the scheduler;
// a slow consumer loses intermediate snapshots, not the final one retained
// for LatestEvaluation.
func (s *Scheduler) Updates() <-chan LiveUpdate {
	return s.updates
}

// StartBatch expands the game into position tasks and takes the session
// for sequential batch analysis. Live triggers are suspended until the
// batch completes or is cancelled.
func (s *Scheduler) StartBatch(game *chess.Game) (*Batch, error) {
	batch, err := newBatch(game, s.thresholds)
	if err != nil {
		return nil, err
	}
	var startErr error
	err = s.do(func() {
		if s.batch != nil {
			startErr = ErrBatchActive
			return
		}
		if s.mode == modeLive {
			_ = s.client.Stop()
		}
		s.mode = modeBatch
		s.batch = batch
		s.advanceBatch()
	})
	if err != nil {
		return nil, err
	}
	if startErr != nil {
		return nil, startErr
	}
	return batch, nil
}

// advanceBatch dispatches the next pending task. Terminal positions are
// completed with their synthetic evaluation and never reach the engine.
// The engine has no capacity for concurrent searches, so at most one task
// is in flight at any time.
func (s *Scheduler) advanceBatch() {
	for {
		task := s.batch.nextPending()
		if task == nil {
			s.finishBatch(nil)
			return
		}
		if task.terminal {
			s.batch.complete(task, &Evaluation{Score: task.synthetic}, "")
			continue
		}
		task.Status = TaskInFlight
		task.Generation = s.dispatch(task.FEN)
		s.inflight[task.Generation] = task
		return
	}
}

func (s *Scheduler) finishBatch(err error) {
	batch := s.batch
	s.batch = nil
	s.mode = modeIdle
	batch.finish(err)
	if s.hasPendingLive {
		fen := s.pendingLive
		s.pendingLive = ""
		s.hasPendingLive = false
		s.startLive(fen)
	}
}

func (s *Scheduler) failBatch(err error) {
	if s.batch == nil {
		return
	}
	s.inflight = make(map[uint64]*Task)
	s.batch.cancelRemaining()
	s.finishBatch(err)
}

// CancelBatch clears the queue, issues an advisory stop and discards any
// result still on the wire for a stale generation.
func (s *Scheduler) CancelBatch() error {
	var cancelErr error
	err := s.do(func() {
		if s.batch == nil {
			cancelErr = ErrNoBatch
			return
		}
		_ = s.client.Stop()
		s.failBatch(ErrBatchCancelled)
	})
	if err != nil {
		return err
	}
	return cancelErr
}

func (s *Scheduler) publish(upd LiveUpdate) {
	select {
	case s.updates <- upd:
	default:
	}
}

// Close shuts the scheduler down, issuing a final stop so no search is
// left running on the engine.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.stopped
}
