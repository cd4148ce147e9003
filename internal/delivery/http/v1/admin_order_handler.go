package v1

import (
	"net/http"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// AdminOrderHandler serves the back-office order operations.
type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: uc}
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Page:          utils.ParseInt(q.Get("page"), 1),
		Limit:         utils.ParseInt(q.Get("limit"), 20),
		Status:        q.Get("status"),
		PaymentStatus: q.Get("paymentStatus"),
		PaymentMethod: q.Get("paymentMethod"),
		Search:        q.Get("search"),
	}

	orders, total, err := h.orderUC.GetAllOrders(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    orders,
		Meta: domain.Pagination{
			Page: filter.Page, Limit: filter.Limit,
			TotalItems: total, TotalPages: totalPages,
		},
	})
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), "", r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: order})
}

func (h *AdminOrderHandler) GetOrderGroup(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderUC.GetOrderGroup(r.Context(), r.PathValue("groupId"))
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: orders})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderUC.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "status updated"})
}

func (h *AdminOrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Empty actor skips the ownership check.
	if err := h.orderUC.CancelOrder(r.Context(), "", r.PathValue("id"), req.Reason); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "order cancelled"})
}

type returnDecisionReq struct {
	Approve  bool   `json:"approve"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (h *AdminOrderHandler) DecideReturn(w http.ResponseWriter, r *http.Request) {
	var req returnDecisionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderUC.DecideReturn(r.Context(), r.PathValue("id"), req.Approve, req.Category, req.Message); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "return decision recorded"})
}

func (h *AdminOrderHandler) CompleteReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.orderUC.CompleteReturn(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "return completed"})
}

type adjustInventoryReq struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}

func (h *AdminOrderHandler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req adjustInventoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orderUC.AdjustInventory(r.Context(), req.ProductID, req.Delta, req.Reason); err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "inventory adjusted"})
}
