package handlers

import (
	"net/http"

	"github.com/zonetune/zonetune/internal/api/dto"
	"github.com/zonetune/zonetune/internal/domain/repositories"
)

const runListLimit = 1000

type RunHandler struct {
	runRepo *repositories.RunRepository
}

func NewRunHandler(runRepo *repositories.RunRepository) *RunHandler {
	return &RunHandler{runRepo: runRepo}
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runRepo.FindRecent(r.Context(), runListLimit)
	if err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	dto.JSON(w, http.StatusOK, runs)
}
