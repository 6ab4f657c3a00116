package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface. Nil apis leave their routes off.
func NewRouter(analysisApi *AnalysisApi, puzzleApi *PuzzleApi) *gin.Engine {
	router := gin.Default()

	apiGroup := router.Group("/api")
	if puzzleApi != nil && puzzleApi.PuzzleRepository != nil {
		apiGroup.GET("/puzzle", puzzleApi.Puzzle)
	}
	if analysisApi != nil {
		apiGroup.POST("/analysis/game", analysisApi.StartGameAnalysis)
		apiGroup.POST("/analysis/user/:username", analysisApi.StartUserAnalysis)
		apiGroup.GET("/analysis/job/:job_id", analysisApi.GetJobStatus)
		apiGroup.GET("/analysis/report/:report_id", analysisApi.GetReport)
		apiGroup.GET("/analysis/player/:player", analysisApi.GetPlayerReports)
		apiGroup.PUT("/live/position", analysisApi.SetLivePosition)
		apiGroup.GET("/live/evaluation", analysisApi.LiveEvaluation)
	}
	return router
}
