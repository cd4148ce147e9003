package v1

import (
	"net/http"
	"time"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/utils"
)

// AdminStatsHandler serves the sales reporting endpoints.
type AdminStatsHandler struct {
	statsUC *usecase.StatsUsecase
}

func NewAdminStatsHandler(uc *usecase.StatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{statsUC: uc}
}

// parseDateRange reads start/end query params (YYYY-MM-DD), defaulting to
// the last 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse("2006-01-02", e)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1) // end date is inclusive
	}
	return start, end, nil
}

func (h *AdminStatsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	series, err := h.statsUC.DailySales(r.Context(), start, end)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: series})
}

func (h *AdminStatsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	kpis, err := h.statsUC.KPIs(r.Context(), start, end)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: kpis})
}
