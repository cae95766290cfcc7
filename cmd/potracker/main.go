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
	"golang.org/x/crypto/bcrypt"

	"potracker/internal/config"
	"potracker/internal/database"
	"potracker/internal/handler"
	"potracker/internal/mw"
	"potracker/internal/service"
	"potracker/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash admin password", "error", err)
		os.Exit(1)
	}

	// Services
	catalogSvc := service.NewCatalogService(db)
	orderSvc := service.NewOrderService(db)
	formSvc := service.NewFormService(db)
	ledger := service.NewLedger(db)
	templateSvc := service.NewTemplateService(db)
	settingsSvc := service.NewSettingsService(db)
	formsClient := service.NewFormsClient(cfg.FormsAPIAddress, cfg.FormsToken)
	oauthClient := service.NewOAuthClient(cfg.OAuthTokenURL, cfg.OAuthClientID, cfg.OAuthClientSecret)

	mailer := service.NewMailer(cfg.MailAPIAddress)
	if cfg.OAuthToken != "" && cfg.OAuthSender != "" {
		mailer.SetOAuth(&service.OAuthCredentials{
			AccessToken: cfg.OAuthToken,
			FromEmail:   cfg.OAuthSender,
			FromName:    cfg.OAuthSenderName,
		})
	}
	if cfg.SMTPHost != "" {
		mailer.SetSMTP(&service.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPSender,
			FromName:  cfg.SMTPSenderName,
		})
	}

	syncSvc := service.NewSync(formSvc, formsClient, catalogSvc, orderSvc, ledger, templateSvc, mailer)

	// Worker
	syncWorker := worker.NewSyncWorker(syncSvc, settingsSvc)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/login", handler.LoginHandler(cfg.AdminLogin, adminHash, cfg.JWTSecret))
	r.Post("/api/orders/confirm", handler.ConfirmOrderHandler(orderSvc, mailer))
	r.Post("/email/send", handler.SendEmailHandler(mailer))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/products", handler.CreateProductHandler(catalogSvc))
		r.Get("/api/products", handler.ListProductsHandler(catalogSvc))
		r.Delete("/api/products/{id}", handler.DeleteProductHandler(catalogSvc))

		r.Post("/api/orders", handler.CreateOrderHandler(orderSvc))
		r.Get("/api/orders", handler.ListOrdersHandler(orderSvc))
		r.Delete("/api/orders/{id}", handler.DeleteOrderHandler(orderSvc))
		r.Put("/api/orders/{id}/status", handler.UpdateOrderStatusHandler(orderSvc))

		r.Post("/api/forms", handler.RegisterFormHandler(formSvc))
		r.Get("/api/forms", handler.ListFormsHandler(formSvc))
		r.Delete("/api/forms/{id}", handler.DeleteFormHandler(formSvc))

		r.Get("/api/template", handler.GetTemplateHandler(templateSvc))
		r.Put("/api/template", handler.UpdateTemplateHandler(templateSvc))

		r.Get("/api/settings", handler.GetSettingsHandler(settingsSvc))
		r.Put("/api/settings", handler.UpdateSettingsHandler(settingsSvc, syncWorker.Reload))

		r.Post("/api/sync", handler.TriggerSyncHandler(syncSvc))
		r.Post("/api/oauth/token", handler.TokenHandler(oauthClient, mailer))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go syncWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
