package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/pricing"
	"litmart-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings carries the policy knobs settlement runs with. Loaded once from
// config at wiring time.
type Settings struct {
	Currency        string
	DeliveryCharge  float64
	MaxCartQuantity int
	ReturnWindow    time.Duration
}

// OrderUsecase is the settlement engine: it snapshots the cart, prices it,
// fans it out into per-product orders, and drives the order state machine.
type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	couponRepo  domain.CouponRepository
	walletRepo  domain.WalletRepository
	addressRepo domain.AddressRepository
	gateway     domain.PaymentGateway
	txManager   domain.TransactionManager
	settings    Settings
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	couponRepo domain.CouponRepository,
	walletRepo domain.WalletRepository,
	addressRepo domain.AddressRepository,
	gateway domain.PaymentGateway,
	txManager domain.TransactionManager,
	settings Settings,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		walletRepo:  walletRepo,
		addressRepo: addressRepo,
		gateway:     gateway,
		txManager:   txManager,
		settings:    settings,
	}
}

// --- Cart ---

func (u *OrderUsecase) GetMyCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.orderRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if domain.KindOf(err) != domain.KindNotFound {
		return nil, err
	}

	cart = &domain.Cart{ID: uuid.NewString(), UserID: userID, Items: []domain.CartItem{}}
	if err := u.orderRepo.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (u *OrderUsecase) AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	newTotal := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID {
			newTotal += item.Quantity
			break
		}
	}
	if u.settings.MaxCartQuantity > 0 && newTotal > u.settings.MaxCartQuantity {
		return nil, domain.Validationf("maximum %d units per product", u.settings.MaxCartQuantity)
	}

	if err := u.orderRepo.UpsertCartItem(ctx, cart.ID, productID, newTotal); err != nil {
		return nil, err
	}
	return u.orderRepo.GetCartByUserID(ctx, userID)
}

func (u *OrderUsecase) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return u.RemoveFromCart(ctx, userID, productID)
	}
	if u.settings.MaxCartQuantity > 0 && quantity > u.settings.MaxCartQuantity {
		return nil, domain.Validationf("maximum %d units per product", u.settings.MaxCartQuantity)
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.orderRepo.UpsertCartItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return u.orderRepo.GetCartByUserID(ctx, userID)
}

func (u *OrderUsecase) RemoveFromCart(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if err := u.orderRepo.RemoveCartItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return u.GetMyCart(ctx, userID)
}

// --- Settlement ---

type PlaceOrderReq struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"` // cod or wallet
	CouponCode    string `json:"couponCode,omitempty"`
}

type CheckoutReq struct {
	AddressID  string `json:"addressId"`
	CouponCode string `json:"couponCode,omitempty"`
}

// CheckoutResp is what the storefront hands to the gateway's checkout widget.
type CheckoutResp struct {
	GroupID        string `json:"groupId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"` // minor units
	Currency       string `json:"currency"`
}

type settlement struct {
	GroupID string
	Orders  []domain.Order
	Total   decimal.Decimal
}

// settle snapshots the cart into a group of orders inside one transaction:
// order rows, stock decrements, coupon usage, wallet debit, and the cart
// clear commit or roll back together.
func (u *OrderUsecase) settle(ctx context.Context, userID, addressID, paymentMethod, couponCode string) (*settlement, error) {
	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.Validationf("cart is empty")
	}

	address, err := u.addressRepo.GetByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	coupon, err := u.resolveCoupon(ctx, userID, couponCode)
	if err != nil {
		return nil, err
	}

	items := make([]pricing.LineItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		if !ci.Product.IsActive {
			return nil, domain.StateConflictf("%s is no longer available", ci.Product.Name)
		}
		if ci.Product.Stock < ci.Quantity {
			return nil, domain.StateConflictf("insufficient stock for %s", ci.Product.Name)
		}
		items = append(items, pricing.LineItem{
			ProductID: ci.ProductID,
			Name:      ci.Product.Name,
			UnitPrice: decimal.NewFromFloat(ci.Product.Price),
			Quantity:  ci.Quantity,
		})
	}

	quote, err := pricing.Price(items, toPricingCoupon(coupon), decimal.NewFromFloat(u.settings.DeliveryCharge))
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrCouponIneligible):
			return nil, domain.Validationf("order total below coupon minimum")
		case errors.Is(err, pricing.ErrCouponRequiresMultipleItems):
			return nil, domain.Validationf("this coupon needs at least two items in the cart")
		default:
			return nil, domain.Validationf("%v", err)
		}
	}

	paymentStatus := domain.PaymentStatusPending
	if paymentMethod == domain.PaymentMethodWallet {
		paymentStatus = domain.PaymentStatusCompleted
	}

	now := time.Now()
	groupID := uuid.NewString()
	addressSnapshot := address.Snapshot()

	orders := make([]domain.Order, len(cart.Items))
	for i, ci := range cart.Items {
		lineTotal := items[i].Total()
		share := quote.LineDiscounts[i]
		// The whole group's delivery charge rides on the first order so the
		// group sums to the quoted final amount.
		delivery := decimal.Zero
		if i == 0 {
			delivery = quote.DeliveryCharge
		}

		orders[i] = domain.Order{
			ID:      uuid.NewString(),
			OrderNo: utils.GenerateOrderNo(now),
			GroupID: groupID,
			UserID:  userID,
			Item: domain.OrderLine{
				ProductID:    ci.ProductID,
				Name:         ci.Product.Name,
				Images:       ci.Product.Images,
				Quantity:     ci.Quantity,
				UnitPrice:    ci.Product.Price,
				RegularPrice: ci.Product.RegularPrice,
			},
			TotalPrice:      lineTotal.InexactFloat64(),
			Discount:        share.InexactFloat64(),
			DeliveryCharge:  delivery.InexactFloat64(),
			FinalAmount:     pricing.FinalAmount(lineTotal, share, delivery).InexactFloat64(),
			ShippingAddress: addressSnapshot,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   paymentStatus,
			Status:          domain.OrderStatusPending,
			RequestStatus:   domain.RequestStatusNone,
			CouponApplied:   coupon != nil,
		}
		if coupon != nil {
			orders[i].CouponCode = coupon.Code
		}
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		for i := range orders {
			if err := u.orderRepo.Create(txCtx, &orders[i]); err != nil {
				return err
			}
			if err := u.productRepo.AdjustStock(txCtx, orders[i].Item.ProductID, -orders[i].Item.Quantity, "order_placed", orders[i].ID); err != nil {
				return err
			}
		}

		if coupon != nil {
			if _, err := u.couponRepo.MarkUsed(txCtx, coupon.ID, userID); err != nil {
				return err
			}
			if err := u.couponRepo.ClearActive(txCtx, userID); err != nil {
				return err
			}
		}

		if paymentMethod == domain.PaymentMethodWallet {
			if _, err := u.walletRepo.Debit(txCtx, userID, quote.FinalAmount.InexactFloat64(), domain.PurposeOrderPayment, groupID); err != nil {
				return err
			}
		}

		return u.orderRepo.ClearCart(txCtx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("checkout settled", "group_id", groupID, "user_id", userID,
		"orders", len(orders), "method", paymentMethod, "total", quote.FinalAmount.InexactFloat64())

	return &settlement{GroupID: groupID, Orders: orders, Total: quote.FinalAmount}, nil
}

// resolveCoupon validates the explicit code, or falls back to the user's
// applied coupon. A nil result means no coupon in play.
func (u *OrderUsecase) resolveCoupon(ctx context.Context, userID, code string) (*domain.Coupon, error) {
	if code == "" {
		active, err := u.couponRepo.GetActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		if active == nil {
			return nil, nil
		}
		code = active.Code
	}

	coupon, err := u.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.Validationf("invalid coupon code")
		}
		return nil, err
	}
	if coupon.Expired(time.Now()) {
		return nil, domain.Validationf("coupon has expired")
	}
	if coupon.HasUsed(userID) {
		return nil, domain.StateConflictf("coupon already used")
	}
	if !coupon.AllowedFor(userID) {
		return nil, domain.Validationf("coupon is not available for this account")
	}
	return coupon, nil
}

// PlaceOrder settles a cod or wallet checkout. Wallet orders are paid up
// front; cod collects on delivery.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, req PlaceOrderReq) ([]domain.Order, error) {
	if req.PaymentMethod != domain.PaymentMethodCOD && req.PaymentMethod != domain.PaymentMethodWallet {
		return nil, domain.Validationf("payment method must be cod or wallet")
	}

	s, err := u.settle(ctx, userID, req.AddressID, req.PaymentMethod, req.CouponCode)
	if err != nil {
		return nil, err
	}
	return s.Orders, nil
}

// CreateCheckoutOrder settles an online checkout with payment pending, then
// opens a gateway order for the group total. A gateway failure leaves the
// settled group intact; RetryCheckoutPayment picks it up.
func (u *OrderUsecase) CreateCheckoutOrder(ctx context.Context, userID string, req CheckoutReq) (*CheckoutResp, error) {
	s, err := u.settle(ctx, userID, req.AddressID, domain.PaymentMethodOnline, req.CouponCode)
	if err != nil {
		return nil, err
	}
	return u.openGatewayOrder(ctx, s.GroupID, s.Total)
}

func (u *OrderUsecase) openGatewayOrder(ctx context.Context, groupID string, total decimal.Decimal) (*CheckoutResp, error) {
	receipt := utils.GenerateReceipt("ord", time.Now())
	intent, err := u.gateway.CreateOrder(ctx, pricing.MinorUnits(total), u.settings.Currency, receipt,
		map[string]string{"groupId": groupID})
	if err != nil {
		slog.Error("gateway order creation failed", "group_id", groupID, "error", err)
		return nil, err
	}

	if err := u.orderRepo.SetGatewayOrder(ctx, groupID, intent.OrderID); err != nil {
		return nil, err
	}
	return &CheckoutResp{
		GroupID:        groupID,
		GatewayOrderID: intent.OrderID,
		Amount:         intent.Amount,
		Currency:       intent.Currency,
	}, nil
}

// VerifyCheckoutPayment checks the gateway callback signature for an online
// group. A bad signature marks the group failed; it never completes silently.
func (u *OrderUsecase) VerifyCheckoutPayment(ctx context.Context, userID, gatewayOrderID, paymentID, signature string) ([]domain.Order, error) {
	orders, err := u.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.NotFoundf("no orders for this payment")
	}
	if orders[0].UserID != userID {
		return nil, domain.NotFoundf("no orders for this payment")
	}

	groupID := orders[0].GroupID
	if !u.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		if err := u.orderRepo.SetGroupPayment(ctx, groupID, domain.PaymentStatusFailed, paymentID); err != nil {
			return nil, err
		}
		slog.Warn("payment signature rejected", "group_id", groupID, "gateway_order_id", gatewayOrderID)
		return nil, domain.Externalf("payment verification failed")
	}

	if err := u.orderRepo.SetGroupPayment(ctx, groupID, domain.PaymentStatusCompleted, paymentID); err != nil {
		return nil, err
	}
	return u.orderRepo.GetByGroupID(ctx, groupID)
}

// RetryCheckoutPayment opens a fresh gateway order for a settled online group
// whose payment never completed.
func (u *OrderUsecase) RetryCheckoutPayment(ctx context.Context, userID, groupID string) (*CheckoutResp, error) {
	orders, err := u.orderRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 || orders[0].UserID != userID {
		return nil, domain.NotFoundf("order group not found")
	}
	if orders[0].PaymentMethod != domain.PaymentMethodOnline {
		return nil, domain.StateConflictf("only online orders can retry payment")
	}

	total := decimal.Zero
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			return nil, domain.StateConflictf("order group is cancelled")
		}
		if o.PaymentStatus == domain.PaymentStatusCompleted {
			return nil, domain.StateConflictf("payment already completed")
		}
		total = total.Add(decimal.NewFromFloat(o.FinalAmount))
	}

	resp, err := u.openGatewayOrder(ctx, groupID, total)
	if err != nil {
		return nil, err
	}
	if err := u.orderRepo.SetGroupPayment(ctx, groupID, domain.PaymentStatusPending, ""); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- State machine ---

// CancelOrder cancels a single order, restores its stock, and refunds the
// wallet when the money was already captured. actorID is empty for admin
// cancellations.
func (u *OrderUsecase) CancelOrder(ctx context.Context, actorID, orderID, reason string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if actorID != "" && order.UserID != actorID {
		return domain.NotFoundf("order not found")
	}
	if !domain.CanCancel(order.Status) {
		return domain.StateConflictf("order is %s and can no longer be cancelled", order.Status)
	}

	refundable := order.PaymentStatus == domain.PaymentStatusCompleted &&
		order.PaymentMethod != domain.PaymentMethodCOD

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.MarkCancelled(txCtx, orderID, reason, []string{
			domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusShipped,
		}); err != nil {
			return err
		}
		if err := u.productRepo.AdjustStock(txCtx, order.Item.ProductID, order.Item.Quantity, "order_cancelled", orderID); err != nil {
			return err
		}
		if refundable {
			if _, err := u.walletRepo.Credit(txCtx, order.UserID, order.FinalAmount, domain.PurposeOrderRefund, orderID); err != nil {
				return err
			}
			if err := u.orderRepo.SetPaymentRefunded(txCtx, orderID, order.FinalAmount); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateOrderStatus is the admin lifecycle endpoint. Cancellation and the
// return sub-flow have their own entry points and are rejected here.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if !domain.CanAdminAssign(status) {
		return domain.Validationf("status must be one of %v", domain.AdminAssignableStatuses)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	switch order.Status {
	case domain.OrderStatusCancelled, domain.OrderStatusReturned,
		domain.OrderStatusReturnRequested, domain.OrderStatusReturning:
		return domain.StateConflictf("order is %s", order.Status)
	}

	if status == domain.OrderStatusDelivered {
		return u.orderRepo.MarkDelivered(ctx, orderID, domain.AdminAssignableStatuses)
	}
	return u.orderRepo.UpdateStatus(ctx, orderID, status, domain.AdminAssignableStatuses)
}

// RequestReturn opens a return request on a delivered order within the
// return window.
func (u *OrderUsecase) RequestReturn(ctx context.Context, userID, orderID, reason, description string) error {
	if reason == "" {
		return domain.Validationf("return reason is required")
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return domain.NotFoundf("order not found")
	}
	if order.Status != domain.OrderStatusDelivered {
		return domain.StateConflictf("only delivered orders can be returned")
	}
	if order.RequestStatus != domain.RequestStatusNone {
		return domain.StateConflictf("return request already %s", order.RequestStatus)
	}
	if order.DeliveredOn == nil || time.Since(*order.DeliveredOn) > u.settings.ReturnWindow {
		return domain.StateConflictf("return window has closed")
	}

	return u.orderRepo.MarkReturnRequested(ctx, orderID, reason, description)
}

// DecideReturn records the admin decision. Approval restocks the item and
// credits the wallet in the same transaction.
func (u *OrderUsecase) DecideReturn(ctx context.Context, orderID string, approve bool, category, message string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusReturnRequested {
		return domain.StateConflictf("order has no pending return request")
	}

	if !approve {
		if category == "" || message == "" {
			return domain.Validationf("rejection category and message are required")
		}
		return u.orderRepo.MarkReturnDecision(ctx, orderID, false, category, message)
	}

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.MarkReturnDecision(txCtx, orderID, true, "", ""); err != nil {
			return err
		}
		if err := u.productRepo.AdjustStock(txCtx, order.Item.ProductID, order.Item.Quantity, "return_approved", orderID); err != nil {
			return err
		}
		_, err := u.walletRepo.Credit(txCtx, order.UserID, order.FinalAmount, domain.PurposeOrderRefund, orderID)
		return err
	})
}

// CompleteReturn closes out an approved return once the item is back.
func (u *OrderUsecase) CompleteReturn(ctx context.Context, orderID string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return u.orderRepo.MarkReturned(ctx, orderID, order.FinalAmount)
}

// --- Queries ---

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orderRepo.GetByUserID(ctx, userID)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, domain.NotFoundf("order not found")
	}
	return order, nil
}

func (u *OrderUsecase) GetOrderGroup(ctx context.Context, groupID string) ([]domain.Order, error) {
	orders, err := u.orderRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.NotFoundf("order group not found")
	}
	return orders, nil
}

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

// AdjustInventory is the admin stock correction entry point.
func (u *OrderUsecase) AdjustInventory(ctx context.Context, productID string, delta int, reason string) error {
	if delta == 0 {
		return domain.Validationf("delta must be non-zero")
	}
	if reason == "" {
		reason = "manual_adjustment"
	}
	return u.productRepo.AdjustStock(ctx, productID, delta, reason, "")
}

func toPricingCoupon(c *domain.Coupon) *pricing.Coupon {
	if c == nil {
		return nil
	}
	pc := &pricing.Coupon{
		Type:     c.Type,
		Value:    decimal.NewFromFloat(c.Value),
		MinOrder: decimal.NewFromFloat(c.MinOrder),
	}
	if c.MaxDiscount != nil {
		max := decimal.NewFromFloat(*c.MaxDiscount)
		pc.MaxDiscount = &max
	}
	return pc
}
