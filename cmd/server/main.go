// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mintguard/internal/events"
	eventsmemory "mintguard/internal/events/store/memory"
	eventspostgres "mintguard/internal/events/store/postgres"
	"mintguard/internal/intake"
	pendingstore "mintguard/internal/intake/store/pending"
	"mintguard/internal/issuance"
	issuancemetrics "mintguard/internal/issuance/metrics"
	"mintguard/internal/oracle"
	"mintguard/internal/platform/config"
	"mintguard/internal/platform/httpserver"
	"mintguard/internal/platform/logger"
	platformpostgres "mintguard/internal/platform/postgres"
	platformredis "mintguard/internal/platform/redis"
	"mintguard/internal/policy"
	allowliststore "mintguard/internal/policy/store/allowlist"
	"mintguard/internal/reserve"
	"mintguard/internal/supply"
	httptransport "mintguard/internal/transport/http"
	"mintguard/pkg/platform/middleware/auth"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	db, err := platformpostgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres init failed", "error", err)
		os.Exit(1)
	}

	// Reserve ledger and policy.
	ledger, err := reserve.NewLedger(cfg.ReserveTTL)
	if err != nil {
		log.Error("reserve ledger init failed", "error", err)
		os.Exit(1)
	}

	var allowlist policy.AllowlistStore
	if db != nil {
		allowlist = allowliststore.NewPostgres(db)
	} else {
		allowlist = allowliststore.NewInMemory()
	}
	policySvc, err := policy.New(allowlist)
	if err != nil {
		log.Error("policy init failed", "error", err)
		os.Exit(1)
	}

	// Supply ledger.
	var supplyLedger supply.Ledger
	if redisClient != nil {
		supplyLedger = supply.NewRedisLedger(redisClient.Client)
	} else {
		supplyLedger = supply.NewInMemoryLedger()
	}

	// Result records.
	var eventStore events.Store
	if db != nil {
		eventStore = eventspostgres.New(db)
	} else {
		eventStore = eventsmemory.New()
	}
	inbox := make(chan events.Event, 256)
	publisher := events.NewPublisher(inbox, log)
	worker := events.NewWorker(eventStore, inbox, log)

	// Issuance engine.
	engine, err := issuance.New(ledger, policySvc, supplyLedger,
		issuance.WithLogger(log),
		issuance.WithEventSink(publisher),
		issuance.WithMetrics(issuancemetrics.New()),
	)
	if err != nil {
		log.Error("issuance engine init failed", "error", err)
		os.Exit(1)
	}

	// Attestation intake and oracle transport.
	var pending intake.PendingStore
	if redisClient != nil {
		pending = pendingstore.NewRedis(redisClient.Client, time.Hour)
	} else {
		pending = pendingstore.NewInMemory(cfg.MaxPendingRequests)
	}

	intakeOpts := []intake.Option{intake.WithLogger(log)}
	var oracleClient *oracle.Client
	if cfg.Kafka.Enabled() {
		oracleClient, err = oracle.NewClient(ctx, cfg.Kafka, log)
		if err != nil {
			log.Error("oracle transport init failed", "error", err)
			os.Exit(1)
		}
		defer oracleClient.Close()
		intakeOpts = append(intakeOpts, intake.WithTransport(oracleClient, "reserve.usd"))
	}
	intakeSvc, err := intake.New(pending, engine, intakeOpts...)
	if err != nil {
		log.Error("intake init failed", "error", err)
		os.Exit(1)
	}

	// HTTP surface.
	handler := httptransport.NewHandler(engine, intakeSvc, eventStore, log)
	router := httptransport.NewRouter(handler, auth.NewValidator(cfg.JWTSigningKey))
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting mintguard", "addr", cfg.Addr, "kafka", cfg.Kafka.Enabled())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	if oracleClient != nil {
		group.Go(func() error {
			if err := oracleClient.Consume(groupCtx, intakeSvc); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("mintguard stopped")
}
