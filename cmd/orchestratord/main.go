// Command orchestratord runs the recovery orchestrator as an HTTP
// service: it wires the operational data store, checkpoint store,
// model gateway, the seven domain analyzers, the arbitrator, and the
// decision record sink together behind the httpapi server, then serves
// until signaled to stop. Structured the way this codebase's own
// service binaries validate configuration up front and shut down on a
// bounded timer rather than hanging indefinitely.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/airline-ops/recovery-orchestrator/analyzer"
	"github.com/airline-ops/recovery-orchestrator/arbitrator"
	"github.com/airline-ops/recovery-orchestrator/checkpoint"
	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/dataaccess"
	"github.com/airline-ops/recovery-orchestrator/decision"
	"github.com/airline-ops/recovery-orchestrator/gateway"
	"github.com/airline-ops/recovery-orchestrator/httpapi"
	"github.com/airline-ops/recovery-orchestrator/metrics"
	"github.com/airline-ops/recovery-orchestrator/orchestrator"
	"github.com/airline-ops/recovery-orchestrator/retrieval"
)

func main() {
	cfg := core.NewConfig()

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := core.NewProductionLogger(cfg.ServiceName)

	recorder := metrics.New()

	redisClient := redis.NewClient(mustParseRedisURL(cfg.RedisURL, cfg.RedisDataDB))
	accessor := dataaccess.NewBatchedAccessor(
		dataaccess.NewRedisStore(redisClient, cfg.ServiceName),
		cfg.BatchSize, cfg.BatchMaxRetries, logger,
	).WithMetrics(recorder)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = &cfg.S3Endpoint
		}
	})

	store, closeStore := buildCheckpointStore(cfg, s3Client, logger, recorder)
	defer closeStore()

	modelGateway := gateway.NewAnthropicGateway(cfg.AnthropicAPIKey, cfg.SafetyModel, cfg.BusinessModel, cfg.ArbitratorModel, logger)

	var retrievalClient retrieval.Client = retrieval.NoopClient{}
	if cfg.RetrievalEndpoint != "" {
		retrievalClient = retrieval.NewHTTPClient(cfg.RetrievalEndpoint, logger)
	}

	analyzers := analyzer.BuildSevenAnalyzers(analyzer.Deps{
		Gateway:    modelGateway,
		Accessor:   accessor,
		Checkpoint: store,
	})

	arb := arbitrator.New(arbitrator.Deps{
		Gateway:   modelGateway,
		Retrieval: retrievalClient,
		Logger:    logger,
	})

	orch := orchestrator.New(orchestrator.Deps{
		Analyzers:  analyzers,
		Supervisor: analyzer.NewSupervisor(logger),
		Checkpoint: store,
		Arbitrator: arb,
		Logger:     logger,
		Metrics:    recorder,
	})

	buckets := make([]decision.BucketWriter, 0, len(cfg.S3Buckets))
	for _, bucket := range cfg.S3Buckets {
		buckets = append(buckets, decision.NewS3Bucket(s3Client, bucket))
	}
	sink := decision.New(httpapi.CheckpointOutputSource{Store: store}, buckets, logger)

	server := httpapi.New(orch, sink, httpapi.CheckpointStatusSource{Store: store}, logger, cfg.CORSAllowedOrigins)
	httpServer := httpapi.NewHTTPServer(fmt.Sprintf(":%d", cfg.HTTPPort), cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, server)

	logger.Info("orchestratord starting", map[string]interface{}{
		"port":               cfg.HTTPPort,
		"checkpoint_backend": cfg.CheckpointBackend,
		"s3_buckets":         len(cfg.S3Buckets),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down gracefully", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		logger.Info("shutdown complete", nil)
		os.Exit(0)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}

// validateConfig checks the environment-derived settings this binary
// cannot run without; analyzer/arbitrator logic degrades at call time
// for everything else (retrieval, S3 buckets), so only true startup
// requirements are enforced here.
func validateConfig(cfg *core.Config) error {
	if cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY environment variable required")
	}
	if cfg.CheckpointBackend == "postgres" && cfg.PostgresDSN == "" {
		return fmt.Errorf("ORCHESTRATOR_POSTGRES_DSN required when CHECKPOINT_STORE_BACKEND=postgres")
	}
	return nil
}

func mustParseRedisURL(rawURL string, db int) *redis.Options {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		log.Fatalf("invalid ORCHESTRATOR_REDIS_URL: %v", err)
	}
	if db != 0 {
		opts.DB = db
	}
	return opts
}

// buildCheckpointStore selects the checkpoint backend per
// cfg.CheckpointBackend, running goose migrations against Postgres
// before handing back a store. The returned func closes whatever
// backing connection pool was opened.
func buildCheckpointStore(cfg *core.Config, s3Client *s3.Client, logger core.Logger, recorder *metrics.Recorder) (checkpoint.Store, func()) {
	if cfg.CheckpointBackend != "postgres" {
		return checkpoint.NewMemoryStore(), func() {}
	}

	migrationDB, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres for migrations: %v", err)
	}
	goose.SetBaseFS(checkpoint.MigrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Up(migrationDB, "migrations"); err != nil {
		log.Fatalf("run checkpoint migrations: %v", err)
	}
	_ = migrationDB.Close()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres pool: %v", err)
	}

	var offloader checkpoint.Offloader
	if len(cfg.S3Buckets) > 0 {
		offloader = checkpoint.NewS3Offloader(s3Client, cfg.S3Buckets[0])
	}

	store := checkpoint.NewPostgresStore(pool, offloader, logger).WithMetrics(recorder)
	return store, pool.Close
}
