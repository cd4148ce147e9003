package v1

import (
	"net/http"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// WalletHandler serves the wallet balance, history, top-up, and withdrawal
// endpoints.
type WalletHandler struct {
	walletUC *usecase.WalletUsecase
}

func NewWalletHandler(uc *usecase.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUC: uc}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	wallet, err := h.walletUC.GetWallet(r.Context(), user.ID)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: wallet})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page := utils.ParseInt(q.Get("page"), 1)
	limit := utils.ParseInt(q.Get("limit"), 20)
	if page < 1 {
		page = 1
	}

	txns, err := h.walletUC.Transactions(r.Context(), user.ID, limit, (page-1)*limit)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: txns})
}

type amountReq struct {
	Amount float64 `json:"amount"`
}

func (h *WalletHandler) CreateTopupOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req amountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.walletUC.CreateTopupOrder(r.Context(), user.ID, req.Amount)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, domain.Response{Success: true, Data: intent})
}

func (h *WalletHandler) VerifyTopup(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req verifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		utils.WriteError(w, http.StatusBadRequest, "gatewayOrderId, gatewayPaymentId and signature are required")
		return
	}

	wallet, err := h.walletUC.VerifyTopup(r.Context(), user.ID, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "wallet topped up", Data: wallet})
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req amountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.walletUC.Withdraw(r.Context(), user.ID, req.Amount)
	if err != nil {
		utils.WriteDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "withdrawal recorded", Data: wallet})
}
