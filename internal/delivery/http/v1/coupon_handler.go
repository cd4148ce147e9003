package v1

import (
	"net/http"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// CouponHandler serves the storefront coupon apply/remove endpoints.
type CouponHandler struct {
	couponUC       *usecase.CouponUsecase
	deliveryCharge float64
}

func NewCouponHandler(uc *usecase.CouponUsecase, deliveryCharge float64) *CouponHandler {
	return &CouponHandler{couponUC: uc, deliveryCharge: deliveryCharge}
}

type applyCouponReq struct {
	Code string `json:"code"`
}

func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req applyCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		utils.WriteError(w, http.StatusBadRequest, "coupon code is required")
		return
	}

	resp, err := h.couponUC.Apply(r.Context(), user.ID, req.Code, h.deliveryCharge)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "coupon applied", Data: resp})
}

func (h *CouponHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.couponUC.Remove(r.Context(), user.ID); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "coupon removed"})
}
