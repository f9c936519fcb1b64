package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shipgate/internal/backend"
	"shipgate/internal/config"
	"shipgate/internal/gateway"
	"shipgate/internal/handler"
	"shipgate/internal/mw"
	"shipgate/internal/ordercache"
	"shipgate/internal/rates"
	"shipgate/internal/scheduler"
	"shipgate/internal/session"
	"shipgate/internal/wallet"
)

func main() {
	cfg := config.New()

	// Stores first: the gateway's auth-failure hook forces sign-out.
	var sessions *session.Store
	gw := gateway.New(cfg.BackendBaseURL, backend.RefreshPath,
		gateway.WithAuthFailureHook(func() {
			if sessions != nil {
				slog.Warn("session refresh failed, signing out")
				sessions.SignOut()
			}
		}))
	api := backend.NewClient(gw)

	sessions = session.NewStore(api, cfg.SessionRefreshInterval)
	wallets := wallet.NewStore(api)
	resolver := rates.NewResolver(api)

	drafts := handler.NewDraftWorkspace(resolver, cfg.QuoteDebounce)

	userOrders := ordercache.NewStore()
	adminOrders := ordercache.NewStore()
	orch := scheduler.New(api, wallets, userOrders)
	adminOrch := scheduler.New(api, wallets, adminOrders)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/login", handler.LoginHandler(api, sessions, cfg.JWTSecret))
	r.Post("/api/signup", handler.SignupHandler(api, sessions, cfg.JWTSecret))
	r.Post("/api/admin/login", handler.AdminLoginHandler(cfg.AdminPasswordHash, cfg.JWTSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/profile", handler.ProfileHandler(sessions))
		r.Post("/api/logout", handler.LogoutHandler(sessions))

		r.Get("/api/pickup-addresses", handler.PickupAddressesHandler(api))
		r.Post("/api/pickup-addresses", handler.CreatePickupLocationHandler(api))
		r.Get("/api/pickup-pincode", handler.PickupPincodeHandler(api))

		r.Post("/api/quotes", handler.QuoteHandler(resolver))

		r.Get("/api/draft", handler.GetDraftHandler(drafts))
		r.Put("/api/draft", handler.UpdateDraftHandler(drafts))
		r.Get("/api/draft/quotes", handler.DraftQuotesHandler(drafts))
		r.Post("/api/draft/select-quote", handler.SelectQuoteHandler(drafts))
		r.Post("/api/draft/submit", handler.SubmitDraftHandler(drafts, api))

		r.Post("/api/orders", handler.CreateOrderHandler(api))
		r.Get("/api/orders", handler.ListOrdersHandler(api.UserOrders, userOrders))
		r.Get("/api/orders/summary", handler.OrdersSummaryHandler(api.UserOrders, userOrders))
		r.Get("/api/orders/export", handler.ExportOrdersHandler(userOrders))
		r.Patch("/api/orders/{orderID}/status", handler.UpdateStatusHandler(orch))
		r.Post("/api/orders/bulk-status", handler.BulkStatusHandler(orch))
		r.Post("/api/orders/schedule", handler.ScheduleHandler(orch))
		r.Get("/api/orders/{orderID}/label", handler.LabelHandler(orch))

		r.Get("/api/wallet/balance", handler.WalletBalanceHandler(wallets))
		r.Get("/api/wallet/history", handler.WalletHistoryHandler(api))
		r.Post("/api/wallet/recharge", handler.RechargeHandler(api))
		r.Post("/api/wallet/verify-payment", handler.VerifyPaymentHandler(api, wallets))

		// Admin views
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)

			r.Get("/api/admin/orders", handler.ListOrdersHandler(api.AllOrders, adminOrders))
			r.Get("/api/admin/orders/summary", handler.OrdersSummaryHandler(api.AllOrders, adminOrders))
			r.Get("/api/admin/orders/export", handler.ExportOrdersHandler(adminOrders))
			r.Patch("/api/admin/orders/{orderID}/status", handler.UpdateStatusHandler(adminOrch))
			r.Post("/api/admin/orders/bulk-status", handler.BulkStatusHandler(adminOrch))
		})
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sessions.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "backend", cfg.BackendBaseURL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop session worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
