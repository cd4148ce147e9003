package usecase

import (
	"context"
	"strings"
	"time"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
)

// In-memory fakes for the repository and gateway boundaries. Transition
// guards mirror the conditional-update semantics of the real repositories.

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- products ---

type fakeProductRepo struct {
	products map[string]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*domain.Product{}}
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.NotFoundf("product not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) AdjustStock(ctx context.Context, productID string, delta int, reason, referenceID string) error {
	p, ok := f.products[productID]
	if !ok {
		return domain.NotFoundf("product not found")
	}
	if p.Stock+delta < 0 {
		return domain.StateConflictf("insufficient stock for %s", p.Name)
	}
	p.Stock += delta
	return nil
}

// --- coupons ---

type fakeCouponRepo struct {
	byID   map[uuid.UUID]*domain.Coupon
	active map[string]*domain.ActiveCoupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{
		byID:   map[uuid.UUID]*domain.Coupon{},
		active: map[string]*domain.ActiveCoupon{},
	}
}

func (f *fakeCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCouponRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.NotFoundf("coupon not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	for _, c := range f.byID {
		if strings.EqualFold(c.Code, code) && c.Listed {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("coupon not found")
}

func (f *fakeCouponRepo) GetByCodeAny(ctx context.Context, code string) (*domain.Coupon, error) {
	for _, c := range f.byID {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("coupon not found")
}

func (f *fakeCouponRepo) List(ctx context.Context, limit, offset int) ([]domain.Coupon, error) {
	out := []domain.Coupon{}
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCouponRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeCouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	existing, ok := f.byID[c.ID]
	if !ok {
		return domain.NotFoundf("coupon not found")
	}
	c.Listed = existing.Listed
	c.UsedBy = existing.UsedBy
	c.UsedCount = existing.UsedCount
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCouponRepo) SetListed(ctx context.Context, id uuid.UUID, listed bool) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.NotFoundf("coupon not found")
	}
	c.Listed = listed
	return nil
}

func (f *fakeCouponRepo) MarkUsed(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	c, ok := f.byID[id]
	if !ok {
		return false, domain.NotFoundf("coupon not found")
	}
	if c.HasUsed(userID) {
		return false, nil
	}
	if c.UsedCount >= c.UsageLimit {
		return false, domain.StateConflictf("coupon usage limit reached")
	}
	c.UsedCount++
	c.UsedBy = append(c.UsedBy, userID)
	return true, nil
}

func (f *fakeCouponRepo) SetActive(ctx context.Context, active *domain.ActiveCoupon) error {
	cp := *active
	f.active[active.UserID] = &cp
	return nil
}

func (f *fakeCouponRepo) GetActive(ctx context.Context, userID string) (*domain.ActiveCoupon, error) {
	a, ok := f.active[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeCouponRepo) ClearActive(ctx context.Context, userID string) error {
	delete(f.active, userID)
	return nil
}

// --- wallets ---

type fakeWalletRepo struct {
	wallets map[string]*domain.Wallet
	txns    []domain.WalletTransaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: map[string]*domain.Wallet{}}
}

func (f *fakeWalletRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		w = &domain.Wallet{ID: uuid.New(), UserID: userID}
		f.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWalletRepo) Credit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.Validationf("credit amount must be positive")
	}
	if _, err := f.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	w := f.wallets[userID]
	w.Balance += amount
	if purpose == domain.PurposeOrderRefund {
		w.RefundAmount += amount
	}
	f.txns = append(f.txns, domain.WalletTransaction{
		ID: uuid.New(), WalletID: w.ID, Amount: amount,
		Type: domain.TxnTypeCredit, Purpose: purpose, ReferenceID: referenceID,
		Status: domain.TxnStatusCompleted, CreatedAt: time.Now(),
	})
	cp := *w
	return &cp, nil
}

func (f *fakeWalletRepo) Debit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.Validationf("debit amount must be positive")
	}
	if _, err := f.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	w := f.wallets[userID]
	if w.Balance < amount {
		return nil, domain.StateConflictf("insufficient wallet balance")
	}
	w.Balance -= amount
	w.TotalDebited += amount
	f.txns = append(f.txns, domain.WalletTransaction{
		ID: uuid.New(), WalletID: w.ID, Amount: amount,
		Type: domain.TxnTypeDebit, Purpose: purpose, ReferenceID: referenceID,
		Status: domain.TxnStatusCompleted, CreatedAt: time.Now(),
	})
	cp := *w
	return &cp, nil
}

func (f *fakeWalletRepo) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, error) {
	w, ok := f.wallets[userID]
	if !ok {
		return []domain.WalletTransaction{}, nil
	}
	out := []domain.WalletTransaction{}
	for _, t := range f.txns {
		if t.WalletID == w.ID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- addresses ---

type fakeAddressRepo struct {
	addresses map[string]*domain.Address // keyed by addressID
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: map[string]*domain.Address{}}
}

func (f *fakeAddressRepo) GetByID(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, domain.NotFoundf("address not found")
	}
	cp := *a
	return &cp, nil
}

// --- orders + carts ---

type fakeOrderRepo struct {
	orders   map[string]*domain.Order
	carts    map[string]*domain.Cart // keyed by userID
	products *fakeProductRepo
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   map[string]*domain.Order{},
		carts:    map[string]*domain.Cart{},
		products: products,
	}
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return len(set) == 0
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	cp := *order
	cp.CreatedAt = time.Now()
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.NotFoundf("order not found")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetByGroupID(ctx context.Context, groupID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range f.orders {
		if o.GroupID == groupID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range f.orders {
		if o.GatewayOrderID == gatewayOrderID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	out := []domain.Order{}
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) transition(id string, fromStatuses []string, mutate func(*domain.Order)) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.NotFoundf("order not found")
	}
	if !statusIn(o.Status, fromStatuses) {
		return domain.StateConflictf("order is %s", o.Status)
	}
	mutate(o)
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id, status string, fromStatuses []string) error {
	return f.transition(id, fromStatuses, func(o *domain.Order) {
		o.Status = status
	})
}

func (f *fakeOrderRepo) MarkDelivered(ctx context.Context, id string, fromStatuses []string) error {
	return f.transition(id, fromStatuses, func(o *domain.Order) {
		now := time.Now()
		o.Status = domain.OrderStatusDelivered
		o.PaymentStatus = domain.PaymentStatusCompleted
		o.DeliveredOn = &now
	})
}

func (f *fakeOrderRepo) MarkCancelled(ctx context.Context, id, reason string, fromStatuses []string) error {
	return f.transition(id, fromStatuses, func(o *domain.Order) {
		now := time.Now()
		o.Status = domain.OrderStatusCancelled
		o.CancelReason = reason
		o.CancelledOn = &now
	})
}

func (f *fakeOrderRepo) MarkReturnRequested(ctx context.Context, id, reason, description string) error {
	return f.transition(id, []string{domain.OrderStatusDelivered}, func(o *domain.Order) {
		o.Status = domain.OrderStatusReturnRequested
		o.RequestStatus = domain.RequestStatusPending
		o.ReturnReason = reason
		o.ReturnDescription = description
	})
}

func (f *fakeOrderRepo) MarkReturnDecision(ctx context.Context, id string, approved bool, category, message string) error {
	return f.transition(id, []string{domain.OrderStatusReturnRequested}, func(o *domain.Order) {
		if approved {
			o.Status = domain.OrderStatusReturning
			o.RequestStatus = domain.RequestStatusApproved
		} else {
			o.Status = domain.OrderStatusDelivered
			o.RequestStatus = domain.RequestStatusRejected
			o.RejectCategory = category
			o.RejectMessage = message
		}
	})
}

func (f *fakeOrderRepo) MarkReturned(ctx context.Context, id string, refundAmount float64) error {
	return f.transition(id, []string{domain.OrderStatusReturning}, func(o *domain.Order) {
		now := time.Now()
		o.Status = domain.OrderStatusReturned
		o.PaymentStatus = domain.PaymentStatusRefunded
		o.RefundStatus = domain.RefundStatusCompleted
		o.RefundAmount = refundAmount
		o.RefundDate = &now
	})
}

func (f *fakeOrderRepo) SetGatewayOrder(ctx context.Context, groupID, gatewayOrderID string) error {
	found := false
	for _, o := range f.orders {
		if o.GroupID == groupID {
			o.GatewayOrderID = gatewayOrderID
			found = true
		}
	}
	if !found {
		return domain.NotFoundf("order group not found")
	}
	return nil
}

func (f *fakeOrderRepo) SetGroupPayment(ctx context.Context, groupID, paymentStatus, gatewayPaymentID string) error {
	found := false
	for _, o := range f.orders {
		if o.GroupID == groupID {
			o.PaymentStatus = paymentStatus
			o.GatewayPaymentID = gatewayPaymentID
			found = true
		}
	}
	if !found {
		return domain.NotFoundf("order group not found")
	}
	return nil
}

func (f *fakeOrderRepo) SetPaymentRefunded(ctx context.Context, id string, refundAmount float64) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.NotFoundf("order not found")
	}
	now := time.Now()
	o.PaymentStatus = domain.PaymentStatusRefunded
	o.RefundStatus = domain.RefundStatusCompleted
	o.RefundAmount = refundAmount
	o.RefundDate = &now
	return nil
}

func (f *fakeOrderRepo) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, domain.NotFoundf("cart not found")
	}
	cp := *cart
	cp.Items = make([]domain.CartItem, len(cart.Items))
	for i, item := range cart.Items {
		cp.Items[i] = item
		if p, ok := f.products.products[item.ProductID]; ok {
			cp.Items[i].Product = *p
		}
	}
	return &cp, nil
}

func (f *fakeOrderRepo) CreateCart(ctx context.Context, cart *domain.Cart) error {
	if _, ok := f.carts[cart.UserID]; ok {
		return nil
	}
	cp := *cart
	f.carts[cart.UserID] = &cp
	return nil
}

func (f *fakeOrderRepo) UpsertCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	for _, cart := range f.carts {
		if cart.ID != cartID {
			continue
		}
		p, ok := f.products.products[productID]
		if !ok {
			return domain.NotFoundf("product not found")
		}
		if !p.IsActive {
			return domain.StateConflictf("product is not available")
		}
		if p.Stock < quantity {
			return domain.StateConflictf("only %d in stock", p.Stock)
		}
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: quantity,
		})
		return nil
	}
	return domain.NotFoundf("cart not found")
}

func (f *fakeOrderRepo) RemoveCartItem(ctx context.Context, userID, productID string) error {
	cart, ok := f.carts[userID]
	if !ok {
		return domain.NotFoundf("item not in cart")
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundf("item not in cart")
}

func (f *fakeOrderRepo) ClearCart(ctx context.Context, cartID string) error {
	for _, cart := range f.carts {
		if cart.ID == cartID {
			cart.Items = nil
		}
	}
	return nil
}

// --- gateway ---

type fakeGateway struct {
	nextOrderID   string
	createErr     error
	payment       *domain.PaymentInfo
	fetchErr      error
	validSig      string
	createdOrders int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*domain.PaymentIntent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdOrders++
	id := f.nextOrderID
	if id == "" {
		id = "order_test"
	}
	return &domain.PaymentIntent{OrderID: id, Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*domain.PaymentInfo, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payment, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == f.validSig && signature != ""
}

// --- cache ---

type fakeCache struct {
	store map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]interface{}{}}
}

func (f *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := f.store[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value interface{}, d time.Duration) {
	f.store[key] = value
}

func (f *fakeCache) Delete(key string) {
	delete(f.store, key)
}

func (f *fakeCache) Flush() {
	f.store = map[string]interface{}{}
}
