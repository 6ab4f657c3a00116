package api

import (
	"context"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gmkornilov/chess-coach-backend/internal/dao"
	"github.com/gmkornilov/chess-coach-backend/internal/lichess"
	"github.com/gmkornilov/chess-coach-backend/pkg/analysis"
)

// gameAnalysisJob drives one batch analysis to completion and stores the
// resulting report.
type gameAnalysisJob struct {
	mu       sync.Mutex
	report   *analysis.GameReport
	reportID string
	err      error
	done     bool

	game    *chess.Game
	batch   *analysis.Batch
	reports dao.ReportRepository
	log     zerolog.Logger
}

func newGameAnalysisJob(game *chess.Game, batch *analysis.Batch, reports dao.ReportRepository, logger zerolog.Logger) *gameAnalysisJob {
	return &gameAnalysisJob{game: game, batch: batch, reports: reports, log: logger}
}

func (j *gameAnalysisJob) StartWork() {
	go j.work()
}

func (j *gameAnalysisJob) work() {
	err := j.batch.Wait(context.Background())

	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	if err != nil {
		j.err = err
		return
	}
	report := analysis.NewGameReport(j.game, j.batch.Records())
	j.report = &report
	if j.reports == nil {
		return
	}
	id, err := j.reports.InsertReport(report)
	if err != nil {
		j.log.Warn().Err(err).Msg("failed to store game report")
		return
	}
	j.reportID = id
}

func (j *gameAnalysisJob) Result() interface{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.report == nil {
		return nil
	}
	return map[string]interface{}{
		"report_id": j.reportID,
		"report":    j.report,
	}
}

func (j *gameAnalysisJob) Progress() float64 {
	return j.batch.Progress()
}

func (j *gameAnalysisJob) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

func (j *gameAnalysisJob) Error() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// userGamesJob fetches a user's recent lichess games and batch-analyzes
// them one after another; the engine only ever sees one search at a time.
type userGamesJob struct {
	mu      sync.Mutex
	reports []analysis.GameReport
	err     error
	done    bool
	games   int
	current int

	username  string
	last      int
	scheduler *analysis.Scheduler
	repo      dao.ReportRepository
	log       zerolog.Logger
}

func newUserGamesJob(username string, last int, scheduler *analysis.Scheduler, repo dao.ReportRepository, logger zerolog.Logger) *userGamesJob {
	return &userGamesJob{username: username, last: last, scheduler: scheduler, repo: repo, log: logger}
}

func (j *userGamesJob) StartWork() {
	go j.work()
}

func (j *userGamesJob) work() {
	games, err := lichess.FetchUserGames(j.username, j.last)
	if err != nil {
		j.finish(err)
		return
	}
	j.mu.Lock()
	j.games = len(games)
	j.mu.Unlock()

	for i, game := range games {
		batch, err := j.scheduler.StartBatch(game)
		if err != nil {
			j.finish(err)
			return
		}
		if err := batch.Wait(context.Background()); err != nil {
			j.finish(err)
			return
		}
		report := analysis.NewGameReport(game, batch.Records())
		if j.repo != nil {
			id, err := j.repo.InsertReport(report)
			if err != nil {
				j.log.Warn().Err(err).Msg("failed to store game report")
			} else if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				report.ID = oid
			}
		}
		j.mu.Lock()
		j.reports = append(j.reports, report)
		j.current = i + 1
		j.mu.Unlock()
	}
	j.finish(nil)
}

func (j *userGamesJob) finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
	j.done = true
}

func (j *userGamesJob) Result() interface{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.reports
}

func (j *userGamesJob) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.games == 0 {
		return 0
	}
	return float64(j.current) / float64(j.games)
}

func (j *userGamesJob) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

func (j *userGamesJob) Error() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
