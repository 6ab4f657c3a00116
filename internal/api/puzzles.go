package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gmkornilov/chess-coach-backend/internal/dao"
)

type PuzzleApi struct {
	PuzzleRepository dao.PuzzleRepository
}

func NewPuzzleApi(puzzleRepo dao.PuzzleRepository) *PuzzleApi {
	return &PuzzleApi{puzzleRepo}
}

// Puzzle serves a random puzzle near the requested rating.
func (p *PuzzleApi) Puzzle(ctx *gin.Context) {
	eloStr := ctx.DefaultQuery("elo", "1500")
	elo, err := strconv.Atoi(eloStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	puz, err := p.PuzzleRepository.GetRandomPuzzleForElo(elo)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, puz)
}
