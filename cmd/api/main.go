package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmarket/internal/auth"
	"taskmarket/internal/config"
	"taskmarket/internal/db"
	"taskmarket/internal/fees"
	internalhttp "taskmarket/internal/http"
	"taskmarket/internal/identity"
	"taskmarket/internal/notify"
	"taskmarket/internal/payrail"
	"taskmarket/internal/services"
	"taskmarket/internal/store"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)
	tokens := auth.TokenIssuer{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute,
	}
	hub := notify.NewHub()
	sender := &notify.Sender{Store: st, Hub: hub}

	userSvc := &services.UserService{
		Store:    st,
		Verifier: identity.NewClient(cfg.WorldID.VerifyURL, cfg.WorldID.AppID),
		Tokens:   tokens,
		Action:   cfg.WorldID.Action,
	}
	taskSvc := &services.TaskService{Store: st}
	submissionSvc := &services.SubmissionService{
		Store:      st,
		Notify:     sender,
		DailyLimit: cfg.Limits.DailySubmissions,
	}
	consensusSvc := &services.ConsensusService{Store: st}
	paymentSvc := &services.PaymentService{
		Store:      st,
		Provider:   payrail.NewClient(cfg.Payments.ProviderURL, cfg.Payments.APIKey),
		Fees:       fees.Policy{PlatformFeeBps: cfg.Payments.PlatformFeeBps},
		Notify:     sender,
		MaxRetries: cfg.Payments.MaxRetries,
	}
	disputeSvc := &services.DisputeService{Store: st, Notify: sender}

	h := &internalhttp.Handler{
		Users:         userSvc,
		Tasks:         taskSvc,
		Submissions:   submissionSvc,
		Consensus:     consensusSvc,
		Payments:      paymentSvc,
		Disputes:      disputeSvc,
		Notifications: st,
		Hub:           hub,
		WebhookSecret: []byte(cfg.Payments.WebhookSecret),
	}
	srv := internalhttp.NewServer(h, st, tokens, cfg.Server.AllowedOrigins)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Printf("api listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
