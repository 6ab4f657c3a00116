package api

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/gmkornilov/chess-coach-backend/internal/dao"
	"github.com/gmkornilov/chess-coach-backend/pkg/analysis"
)

// AnalysisApi exposes batch-game analysis jobs and the live-position
// evaluation surface. With no scheduler (engine unavailable) every
// endpoint degrades to "no evaluation" instead of blocking.
type AnalysisApi struct {
	Scheduler        *analysis.Scheduler
	ReportRepository dao.ReportRepository

	log        zerolog.Logger
	activeJobs map[string]Worker
	totalJobs  int
	mu         sync.RWMutex
}

func NewAnalysisApi(scheduler *analysis.Scheduler, reportRepo dao.ReportRepository, logger zerolog.Logger) *AnalysisApi {
	return &AnalysisApi{
		Scheduler:        scheduler,
		ReportRepository: reportRepo,
		log:              logger,
		activeJobs:       make(map[string]Worker),
	}
}

func (a *AnalysisApi) unavailable(ctx *gin.Context) bool {
	if a.Scheduler != nil {
		return false
	}
	ctx.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "no evaluation: engine unavailable",
	})
	return true
}

func (a *AnalysisApi) registerJob(worker Worker) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalJobs++
	byteValue := []byte(strconv.Itoa(a.totalJobs))
	id := fmt.Sprintf("%x", md5.Sum(byteValue))
	a.activeJobs[id] = worker
	worker.StartWork()
	return id
}

// StartGameAnalysis reads a PGN body and starts a whole-game batch job.
func (a *AnalysisApi) StartGameAnalysis(ctx *gin.Context) {
	if a.unavailable(ctx) {
		return
	}
	pgn, err := chess.PGN(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid PGN: " + err.Error(),
		})
		return
	}
	game := chess.NewGame(pgn)
	batch, err := a.Scheduler.StartBatch(game)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrBatchActive) {
			status = http.StatusConflict
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	job := newGameAnalysisJob(game, batch, a.ReportRepository, a.log)
	id := a.registerJob(job)
	ctx.JSON(http.StatusOK, gin.H{
		"job_id": id,
	})
}

// StartUserAnalysis analyzes a lichess user's recent games sequentially.
func (a *AnalysisApi) StartUserAnalysis(ctx *gin.Context) {
	if a.unavailable(ctx) {
		return
	}
	name := ctx.Param("username")
	lastStr := ctx.DefaultQuery("last", "5")
	last, err := strconv.Atoi(lastStr)
	if err != nil || last <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "last should be positive integer",
		})
		return
	}

	job := newUserGamesJob(name, last, a.Scheduler, a.ReportRepository, a.log)
	id := a.registerJob(job)
	ctx.JSON(http.StatusOK, gin.H{
		"job_id": id,
	})
}

// GetJobStatus reports progress for an active job and its result once
// done. Finished jobs are served once and dropped.
func (a *AnalysisApi) GetJobStatus(ctx *gin.Context) {
	id := ctx.Param("job_id")
	a.mu.Lock()
	defer a.mu.Unlock()
	worker, ok := a.activeJobs[id]
	if !ok {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	if !worker.Done() {
		ctx.JSON(http.StatusOK, gin.H{
			"done":     false,
			"progress": worker.Progress(),
		})
		return
	}
	delete(a.activeJobs, id)
	if worker.Error() != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"done":  true,
			"error": worker.Error().Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"done":   true,
		"result": worker.Result(),
	})
}

// GetReport fetches a stored game report.
func (a *AnalysisApi) GetReport(ctx *gin.Context) {
	if a.ReportRepository == nil {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	report, err := a.ReportRepository.GetReport(ctx.Param("report_id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// GetPlayerReports lists stored reports mentioning a player.
func (a *AnalysisApi) GetPlayerReports(ctx *gin.Context) {
	if a.ReportRepository == nil {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	reports, err := a.ReportRepository.GetPlayerReports(ctx.Param("player"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, reports)
}

type livePositionRequest struct {
	Fen string `json:"fen" binding:"required"`
}

// SetLivePosition points live analysis at a new position.
func (a *AnalysisApi) SetLivePosition(ctx *gin.Context) {
	if a.unavailable(ctx) {
		return
	}
	var req livePositionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Scheduler.SetLivePosition(req.Fen); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// LiveEvaluation returns the retained evaluation for the tracked position.
func (a *AnalysisApi) LiveEvaluation(ctx *gin.Context) {
	if a.unavailable(ctx) {
		return
	}
	upd, ok := a.Scheduler.LatestEvaluation()
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no evaluation"})
		return
	}
	ctx.JSON(http.StatusOK, upd)
}
