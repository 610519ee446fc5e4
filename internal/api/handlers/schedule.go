package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zonetune/zonetune/internal/api/dto"
	"github.com/zonetune/zonetune/internal/domain/repositories"
	"github.com/zonetune/zonetune/internal/domain/services"
	"github.com/zonetune/zonetune/internal/pkg/validator"
)

type ScheduleHandler struct {
	scheduleSvc *services.ScheduleService
	runRepo     *repositories.RunRepository
}

func NewScheduleHandler(scheduleSvc *services.ScheduleService, runRepo *repositories.RunRepository) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, runRepo: runRepo}
}

func scheduleID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "scheduleID"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.scheduleSvc.List(r.Context())
	if err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to list schedules")
		return
	}
	dto.JSON(w, http.StatusOK, schedules)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	schedule, err := h.scheduleSvc.Create(r.Context(), services.CreateScheduleInput{
		Name:        req.Name,
		Description: req.Description,
		At:          req.At,
		Repeat:      req.Repeat,
		RepeatUnit:  req.RepeatUnit,
		Assign:      req.Assign,
	})
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}
	schedule, err := h.scheduleSvc.Get(r.Context(), id)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	var req dto.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	schedule, err := h.scheduleSvc.Update(r.Context(), id, services.UpdateScheduleInput{
		Name:        req.Name,
		Description: req.Description,
		At:          req.At,
		Repeat:      req.Repeat,
		RepeatUnit:  req.RepeatUnit,
		Assign:      req.Assign,
		DisabledAt:  req.DisabledAt,
	})
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}
	if err := h.scheduleSvc.Delete(r.Context(), id); err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to delete schedule")
		return
	}
	dto.JSON(w, http.StatusOK, nil)
}

func (h *ScheduleHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}
	schedule, err := h.scheduleSvc.Copy(r.Context(), id)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Targets(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}
	targets, err := h.scheduleSvc.Targets(r.Context(), id)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusOK, targets)
}

func (h *ScheduleHandler) SetTargets(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}

	var req dto.SetTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := services.SetTargetsInput{}
	for _, add := range req.Add {
		input.Add = append(input.Add, services.TargetInput{ZoneID: add.ZoneID, AccountID: add.AccountID})
	}
	for _, target := range req.Activate {
		input.Activate = append(input.Activate, target.ZoneID)
	}
	for _, target := range req.Deactivate {
		input.Deactivate = append(input.Deactivate, target.ZoneID)
	}
	for _, target := range req.Remove {
		input.Remove = append(input.Remove, target.ZoneID)
	}

	targets, err := h.scheduleSvc.SetTargets(r.Context(), id, input)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	dto.JSON(w, http.StatusOK, targets)
}

func (h *ScheduleHandler) Actions(w http.ResponseWriter, r *http.Request) {
	id, ok := scheduleID(r)
	if !ok {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid schedule ID")
		return
	}
	if _, err := h.scheduleSvc.Get(r.Context(), id); err != nil {
		writeScheduleError(w, err)
		return
	}
	actions, err := h.runRepo.ActionsBySchedule(r.Context(), id)
	if err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to list actions")
		return
	}
	dto.JSON(w, http.StatusOK, actions)
}

func writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		dto.ErrorResponse(w, http.StatusNotFound, "schedule not found")
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidRepeat),
		errors.Is(err, services.ErrInvalidRepeatUnit):
		dto.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		dto.ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}
