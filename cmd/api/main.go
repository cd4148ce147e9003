package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"litmart-backend/config"
	"litmart-backend/internal/delivery/http/middleware"
	v1 "litmart-backend/internal/delivery/http/v1"
	"litmart-backend/internal/gateway/razorpay"
	"litmart-backend/internal/infrastructure/cache"
	pgrepo "litmart-backend/internal/repository/postgres"
	"litmart-backend/internal/usecase"
	"litmart-backend/pkg/logger"
	"litmart-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	productRepo := pgrepo.NewProductRepository(pgxPool)
	addressRepo := pgrepo.NewAddressRepository(pgxPool)
	couponRepo := pgrepo.NewCouponRepository(pgxPool)
	walletRepo := pgrepo.NewWalletRepository(pgxPool)
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CacheDefaultTTL, cfg.CacheCleanupPeriod)

	// Payment Gateway
	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, cfg.GatewayTimeout)

	// Set up Router
	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Order Module (cart, checkout, settlement, returns)
	orderUC := usecase.NewOrderUsecase(
		orderRepo, productRepo, couponRepo, walletRepo, addressRepo,
		gateway, txManager,
		usecase.Settings{
			Currency:        cfg.Currency,
			DeliveryCharge:  cfg.DeliveryCharge,
			MaxCartQuantity: cfg.MaxCartQuantity,
			ReturnWindow:    cfg.ReturnWindow,
		},
	)
	orderHandler := v1.NewOrderHandler(orderUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	// Coupon Module
	couponUC := usecase.NewCouponUsecase(couponRepo, orderRepo, memCache)
	couponHandler := v1.NewCouponHandler(couponUC, cfg.DeliveryCharge)
	adminCouponHandler := v1.NewAdminCouponHandler(couponUC)

	// Wallet Module
	walletUC := usecase.NewWalletUsecase(walletRepo, gateway, cfg.Currency)
	walletHandler := v1.NewWalletHandler(walletUC)

	// Stats Module (Analytics)
	statsUC := usecase.NewStatsUsecase(pgxPool, memCache)
	adminStatsHandler := v1.NewAdminStatsHandler(statsUC)

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Cart
	mux.Handle("GET /api/v1/cart", authed(orderHandler.GetCart))
	mux.Handle("POST /api/v1/cart", authed(orderHandler.AddToCart))
	mux.Handle("PUT /api/v1/cart", authed(orderHandler.UpdateCart))
	mux.Handle("DELETE /api/v1/cart/{productId}", authed(orderHandler.RemoveFromCart))

	// Coupon (Storefront)
	mux.Handle("POST /api/v1/coupon/apply", authed(couponHandler.Apply))
	mux.Handle("POST /api/v1/coupon/remove", authed(couponHandler.Remove))

	// Checkout (online payments)
	mux.Handle("POST /api/v1/checkout/create-order", authed(orderHandler.CreateCheckoutOrder))
	mux.Handle("POST /api/v1/checkout/verify-payment", authed(orderHandler.VerifyCheckoutPayment))
	mux.Handle("POST /api/v1/checkout/retry-payment", authed(orderHandler.RetryCheckoutPayment))

	// Orders
	mux.Handle("POST /api/v1/orders/place", authed(orderHandler.PlaceOrder))
	mux.Handle("GET /api/v1/orders", authed(orderHandler.GetMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", authed(orderHandler.GetOrder))
	mux.Handle("POST /api/v1/orders/{id}/cancel", authed(orderHandler.CancelOrder))
	mux.Handle("POST /api/v1/orders/{id}/return", authed(orderHandler.RequestReturn))

	// Wallet
	mux.Handle("GET /api/v1/wallet", authed(walletHandler.GetWallet))
	mux.Handle("GET /api/v1/wallet/transactions", authed(walletHandler.Transactions))
	mux.Handle("POST /api/v1/wallet/topup/create-order", authed(walletHandler.CreateTopupOrder))
	mux.Handle("POST /api/v1/wallet/topup/verify", authed(walletHandler.VerifyTopup))
	mux.Handle("POST /api/v1/wallet/withdraw", authed(walletHandler.Withdraw))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", admin(adminOrderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(adminOrderHandler.GetOrder))
	mux.Handle("GET /api/v1/admin/order-groups/{groupId}", admin(adminOrderHandler.GetOrderGroup))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", admin(adminOrderHandler.UpdateStatus))
	mux.Handle("POST /api/v1/admin/orders/{id}/cancel", admin(adminOrderHandler.CancelOrder))
	mux.Handle("POST /api/v1/admin/orders/{id}/return-decision", admin(adminOrderHandler.DecideReturn))
	mux.Handle("POST /api/v1/admin/orders/{id}/return-complete", admin(adminOrderHandler.CompleteReturn))

	// Admin Coupons
	mux.Handle("GET /api/v1/admin/coupons", admin(adminCouponHandler.List))
	mux.Handle("POST /api/v1/admin/coupons", admin(adminCouponHandler.Create))
	mux.Handle("GET /api/v1/admin/coupons/{id}", admin(adminCouponHandler.Get))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", admin(adminCouponHandler.Update))
	mux.Handle("PATCH /api/v1/admin/coupons/{id}/toggle", admin(adminCouponHandler.Toggle))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", admin(adminCouponHandler.Delete))

	// Admin Inventory
	mux.Handle("POST /api/v1/admin/inventory/adjust", admin(adminOrderHandler.AdjustInventory))

	// Admin Stats Routes (Analytics)
	mux.Handle("GET /api/v1/admin/stats/revenue", admin(adminStatsHandler.DailySales))
	mux.Handle("GET /api/v1/admin/stats/kpis", admin(adminStatsHandler.KPIs))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitPerSecond),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
