package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"agendapro-backend/config"
	"agendapro-backend/controllers"
	"agendapro-backend/routes"
	"agendapro-backend/services"
	"agendapro-backend/store"
	"agendapro-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	gw, closeGateway, err := config.NewGateway(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to set up data gateway")
	}
	defer func() {
		if err := closeGateway(); err != nil {
			log.WithError(err).Warn("failed to close data gateway")
		}
	}()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, generating a random secret; sessions end on restart")
		cfg.JWTSecret = utils.GenerateJWTSecret()
	}
	tokens := utils.TokenIssuer{Secret: cfg.JWTSecret, Expiry: cfg.JWTExpiry()}

	notifier := services.NewNotifier(gw, newMessenger(cfg, log), log)
	log.WithField("provider", notifier.Provider()).Info("messaging ready")

	var reminders *services.ReminderService
	if cfg.RemindersEnabled {
		reminders = services.NewReminderService(gw, notifier, cfg.ReminderCron, cfg.Location(), log)
		if err := reminders.StartScheduler(); err != nil {
			log.WithError(err).Fatal("failed to start reminder scheduler")
		}
	}

	h := controllers.New(controllers.Handler{
		Sessions:     store.NewRegistry(gw, log),
		Notifier:     notifier,
		Payments:     services.NewPayments(services.StripeConfig{SecretKey: cfg.StripeSecretKey, Currency: cfg.PaymentCurrency, Log: log}),
		Reminders:    reminders,
		Tokens:       tokens,
		BookingTimes: cfg.BookingSlots(),
		Currency:     cfg.PaymentCurrency,
		DefaultSalon: cfg.SalonID(),
		Location:     cfg.Location(),
		Log:          log,
	})

	stop := make(chan struct{})
	r := routes.SetupRouter(h, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Auth:           tokens.Middleware(),
		PublicLimit:    routes.NewPublicLimiter(cfg.BookingRatePerSecond, cfg.BookingBurst, log, stop),
		Log:            log,
	})
	routes.PrintRoutes(r, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if reminders != nil {
		select {
		case <-reminders.Stop().Done():
		case <-ctx.Done():
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}

func newMessenger(cfg *config.Config, log logrus.FieldLogger) services.Messenger {
	switch cfg.Messaging() {
	case config.MessagingWhatsApp:
		return services.NewWhatsAppMessenger(services.WhatsAppConfig{
			APIURL:        cfg.WhatsAppAPIURL,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			AccessToken:   cfg.WhatsAppAccessToken,
			Language:      cfg.WhatsAppLanguage,
		})
	case config.MessagingTwilio:
		return services.NewTwilioMessenger(services.TwilioConfig{
			AccountSID:     cfg.TwilioAccountSID,
			AuthToken:      cfg.TwilioAuthToken,
			WhatsAppNumber: cfg.TwilioWhatsAppNumber,
		})
	}
	return services.LogMessenger{Log: log}
}
