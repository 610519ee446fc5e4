package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/api/dto"
	"github.com/zonetune/zonetune/internal/cache"
	"github.com/zonetune/zonetune/internal/domain/services"
	"github.com/zonetune/zonetune/internal/soundtrack"
)

// RemoteHandler proxies reads against the Soundtrack API. List endpoints
// honor a skipCache query flag that forces a live fetch.
type RemoteHandler struct {
	api         *soundtrack.Api
	cache       cache.Cache
	scheduleSvc *services.ScheduleService
}

func NewRemoteHandler(api *soundtrack.Api, c cache.Cache, scheduleSvc *services.ScheduleService) *RemoteHandler {
	return &RemoteHandler{api: api, cache: c, scheduleSvc: scheduleSvc}
}

func skipCache(r *http.Request) bool {
	return r.URL.Query().Get("skipCache") == "true"
}

func (h *RemoteHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.api.Accounts(r.Context(), skipCache(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get accounts")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get accounts")
		return
	}
	dto.JSON(w, http.StatusOK, accounts)
}

func (h *RemoteHandler) Account(w http.ResponseWriter, r *http.Request) {
	account, err := h.api.Account(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get account")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get account")
		return
	}
	dto.JSON(w, http.StatusOK, account)
}

func (h *RemoteHandler) AccountZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.api.AccountZones(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get zones for account")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get zones for account")
		return
	}
	dto.JSON(w, http.StatusOK, zones)
}

// AccountSchedules lists the locally stored schedules that touch the
// account, not remote data; it lives here because it is keyed by account.
func (h *RemoteHandler) AccountSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.scheduleSvc.SchedulesForAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to list schedules for account")
		return
	}
	dto.JSON(w, http.StatusOK, schedules)
}

func (h *RemoteHandler) Library(w http.ResponseWriter, r *http.Request) {
	library, err := h.api.Library(r.Context(), chi.URLParam(r, "accountID"), skipCache(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get library")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get library")
		return
	}
	dto.JSON(w, http.StatusOK, library)
}

func (h *RemoteHandler) Zones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.api.Zones(r.Context(), skipCache(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get zones")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get zones")
		return
	}
	dto.JSON(w, http.StatusOK, zones)
}

func (h *RemoteHandler) Zone(w http.ResponseWriter, r *http.Request) {
	zone, err := h.api.Zone(r.Context(), chi.URLParam(r, "zoneID"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get zone")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get zone")
		return
	}
	dto.JSON(w, http.StatusOK, zone)
}

func (h *RemoteHandler) Assignable(w http.ResponseWriter, r *http.Request) {
	assignable, err := h.api.Assignable(r.Context(), chi.URLParam(r, "assignableID"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get assignable")
		dto.ErrorResponse(w, http.StatusBadGateway, "failed to get assignable")
		return
	}
	if assignable == nil {
		dto.ErrorResponse(w, http.StatusNotFound, "assignable not found")
		return
	}
	dto.JSON(w, http.StatusOK, assignable)
}

func (h *RemoteHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("Clearing cache")
	if err := h.cache.Clear(r.Context()); err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	dto.JSON(w, http.StatusOK, nil)
}

func (h *RemoteHandler) CacheCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.cache.Count(r.Context())
	if err != nil {
		dto.ErrorResponse(w, http.StatusInternalServerError, "failed to count cache entries")
		return
	}
	dto.JSON(w, http.StatusOK, map[string]int64{"count": count})
}
