package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmarket/internal/config"
	"taskmarket/internal/db"
	"taskmarket/internal/fees"
	"taskmarket/internal/notify"
	"taskmarket/internal/payrail"
	"taskmarket/internal/services"
	"taskmarket/internal/store"
	"taskmarket/internal/worker"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)
	paymentSvc := &services.PaymentService{
		Store:      st,
		Provider:   payrail.NewClient(cfg.Payments.ProviderURL, cfg.Payments.APIKey),
		Fees:       fees.Policy{PlatformFeeBps: cfg.Payments.PlatformFeeBps},
		Notify:     &notify.Sender{Store: st},
		MaxRetries: cfg.Payments.MaxRetries,
	}

	w := &worker.Worker{
		Store:    st,
		Payments: paymentSvc,
		Interval: time.Duration(cfg.Worker.IntervalSeconds) * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	log.Printf("worker running every %s", w.Interval)
	w.Run(ctx)
}
