package v1

import (
	"net/http"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// AdminCouponHandler serves the coupon CRUD surface.
type AdminCouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewAdminCouponHandler(uc *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{couponUC: uc}
}

func (h *AdminCouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon, err := h.couponUC.Create(r.Context(), req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Data: coupon})
}

func (h *AdminCouponHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := utils.ParseInt(q.Get("page"), 1)
	limit := utils.ParseInt(q.Get("limit"), 20)
	if page < 1 {
		page = 1
	}

	coupons, total, err := h.couponUC.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    coupons,
		Meta:    domain.Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages},
	})
}

func (h *AdminCouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: coupon})
}

func (h *AdminCouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon, err := h.couponUC.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: coupon})
}

func (h *AdminCouponHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: coupon})
}

func (h *AdminCouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "coupon deleted"})
}
