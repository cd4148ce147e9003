package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_no, group_id, user_id,
	product_id, product_name, product_images, quantity, unit_price, regular_price,
	total_price, discount, delivery_charge, final_amount,
	shipping_address, payment_method, payment_status, status, request_status,
	coupon_applied, coupon_code, gateway_order_id, gateway_payment_id,
	cancel_reason, return_reason, return_description, reject_category, reject_message,
	refund_status, refund_amount, refund_date, delivered_on, cancelled_on,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.GroupID, &o.UserID,
		&o.Item.ProductID, &o.Item.Name, &o.Item.Images, &o.Item.Quantity, &o.Item.UnitPrice, &o.Item.RegularPrice,
		&o.TotalPrice, &o.Discount, &o.DeliveryCharge, &o.FinalAmount,
		&o.ShippingAddress, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.RequestStatus,
		&o.CouponApplied, &o.CouponCode, &o.GatewayOrderID, &o.GatewayPaymentID,
		&o.CancelReason, &o.ReturnReason, &o.ReturnDescription, &o.RejectCategory, &o.RejectMessage,
		&o.RefundStatus, &o.RefundAmount, &o.RefundDate, &o.DeliveredOn, &o.CancelledOn,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("order not found")
		}
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO orders (id, order_no, group_id, user_id,
			product_id, product_name, product_images, quantity, unit_price, regular_price,
			total_price, discount, delivery_charge, final_amount,
			shipping_address, payment_method, payment_status, status, request_status,
			coupon_applied, coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		order.ID, order.OrderNo, order.GroupID, order.UserID,
		order.Item.ProductID, order.Item.Name, order.Item.Images, order.Item.Quantity,
		order.Item.UnitPrice, order.Item.RegularPrice,
		order.TotalPrice, order.Discount, order.DeliveryCharge, order.FinalAmount,
		order.ShippingAddress, order.PaymentMethod, order.PaymentStatus, order.Status,
		order.RequestStatus, order.CouponApplied, order.CouponCode)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := executor(ctx, r.db)
	return scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *orderRepository) GetByGroupID(ctx context.Context, groupID string) ([]domain.Order, error) {
	q := executor(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE group_id = $1 ORDER BY created_at, order_no`, groupID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]domain.Order, error) {
	q := executor(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE gateway_order_id = $1 ORDER BY created_at, order_no`, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	q := executor(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := executor(ctx, r.db)

	where := "WHERE 1=1"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		where += " AND status = " + arg(filter.Status)
	}
	if filter.PaymentStatus != "" {
		where += " AND payment_status = " + arg(filter.PaymentStatus)
	}
	if filter.PaymentMethod != "" {
		where += " AND payment_method = " + arg(filter.PaymentMethod)
	}
	if filter.Search != "" {
		where += " AND (order_no ILIKE " + arg("%"+filter.Search+"%") +
			" OR product_name ILIKE " + arg("%"+filter.Search+"%") + ")"
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT count(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := "SELECT " + orderColumns + " FROM orders " + where +
		" ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg((page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// conditionalTransition runs an UPDATE guarded by the expected current
// statuses and maps the zero-row case to NotFound or StateConflict.
func (r *orderRepository) conditionalTransition(ctx context.Context, id string, fromStatuses []string, set string, args ...any) error {
	q := executor(ctx, r.db)

	query := fmt.Sprintf(`UPDATE orders SET %s, updated_at = now() WHERE id = $1`, set)
	if len(fromStatuses) > 0 {
		query += fmt.Sprintf(` AND status = ANY($%d)`, len(args)+2)
		args = append(args, fromStatuses)
	}
	tag, err := q.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = q.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("order not found")
		}
		return err
	}
	return domain.StateConflictf("order is %s", current)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string, fromStatuses []string) error {
	return r.conditionalTransition(ctx, id, fromStatuses, `status = $2`, status)
}

func (r *orderRepository) MarkDelivered(ctx context.Context, id string, fromStatuses []string) error {
	return r.conditionalTransition(ctx, id, fromStatuses,
		`status = $2, payment_status = $3, delivered_on = now()`,
		domain.OrderStatusDelivered, domain.PaymentStatusCompleted)
}

func (r *orderRepository) MarkCancelled(ctx context.Context, id, reason string, fromStatuses []string) error {
	return r.conditionalTransition(ctx, id, fromStatuses,
		`status = $2, cancel_reason = $3, cancelled_on = now()`,
		domain.OrderStatusCancelled, reason)
}

func (r *orderRepository) MarkReturnRequested(ctx context.Context, id, reason, description string) error {
	return r.conditionalTransition(ctx, id, []string{domain.OrderStatusDelivered},
		`status = $2, request_status = $3, return_reason = $4, return_description = $5`,
		domain.OrderStatusReturnRequested, domain.RequestStatusPending, reason, description)
}

func (r *orderRepository) MarkReturnDecision(ctx context.Context, id string, approved bool, category, message string) error {
	if approved {
		return r.conditionalTransition(ctx, id, []string{domain.OrderStatusReturnRequested},
			`status = $2, request_status = $3`,
			domain.OrderStatusReturning, domain.RequestStatusApproved)
	}
	return r.conditionalTransition(ctx, id, []string{domain.OrderStatusReturnRequested},
		`status = $2, request_status = $3, reject_category = $4, reject_message = $5`,
		domain.OrderStatusDelivered, domain.RequestStatusRejected, category, message)
}

func (r *orderRepository) MarkReturned(ctx context.Context, id string, refundAmount float64) error {
	return r.conditionalTransition(ctx, id, []string{domain.OrderStatusReturning},
		`status = $2, payment_status = $3, refund_status = $4, refund_amount = $5, refund_date = now()`,
		domain.OrderStatusReturned, domain.PaymentStatusRefunded, domain.RefundStatusCompleted, refundAmount)
}

func (r *orderRepository) SetGatewayOrder(ctx context.Context, groupID, gatewayOrderID string) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE orders SET gateway_order_id = $2, updated_at = now() WHERE group_id = $1`,
		groupID, gatewayOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("order group not found")
	}
	return nil
}

func (r *orderRepository) SetGroupPayment(ctx context.Context, groupID, paymentStatus, gatewayPaymentID string) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE orders SET payment_status = $2, gateway_payment_id = $3, updated_at = now()
		WHERE group_id = $1`, groupID, paymentStatus, gatewayPaymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("order group not found")
	}
	return nil
}

func (r *orderRepository) SetPaymentRefunded(ctx context.Context, id string, refundAmount float64) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE orders SET payment_status = $2, refund_status = $3, refund_amount = $4,
			refund_date = now(), updated_at = now()
		WHERE id = $1`,
		id, domain.PaymentStatusRefunded, domain.RefundStatusCompleted, refundAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("order not found")
	}
	return nil
}

// --- Cart ---

func (r *orderRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	q := executor(ctx, r.db)

	var cart domain.Cart
	err := q.QueryRow(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("cart not found")
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.id, p.name, p.slug, p.price, p.regular_price, p.stock, p.images, p.is_active,
		       p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		p := &item.Product
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Slug, &p.Price, &p.RegularPrice, &p.Stock, &p.Images, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}

func (r *orderRepository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, cart.ID, cart.UserID)
	return err
}

// UpsertCartItem sets the line quantity, guarded against inactive products and
// quantities beyond current stock.
func (r *orderRepository) UpsertCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	q := executor(ctx, r.db)

	tag, err := q.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		SELECT $1, $2, id, $4 FROM products
		WHERE id = $3 AND is_active = true AND stock >= $4
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		uuid.NewString(), cartID, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var stock int
		var active bool
		err := q.QueryRow(ctx, `SELECT stock, is_active FROM products WHERE id = $1`, productID).
			Scan(&stock, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFoundf("product not found")
			}
			return err
		}
		if !active {
			return domain.StateConflictf("product is not available")
		}
		return domain.StateConflictf("only %d in stock", stock)
	}
	return nil
}

func (r *orderRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		DELETE FROM cart_items ci USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = $2`,
		userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("item not in cart")
	}
	return nil
}

func (r *orderRepository) ClearCart(ctx context.Context, cartID string) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
