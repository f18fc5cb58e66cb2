package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"herald/internal/address"
	addresshandler "herald/internal/address/handler"
	"herald/internal/delivery"
	deliverymetrics "herald/internal/delivery/metrics"
	"herald/internal/directory"
	"herald/internal/dispatch"
	"herald/internal/job"
	jobhandler "herald/internal/job/handler"
	jobmetrics "herald/internal/job/metrics"
	jobservice "herald/internal/job/service"
	"herald/internal/jwt_token"
	"herald/internal/message"
	"herald/internal/platform/config"
	"herald/internal/platform/httpserver"
	"herald/internal/platform/logger"
	platformmetrics "herald/internal/platform/metrics"
	"herald/internal/platform/redis"
	"herald/internal/status"
	httptransport "herald/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services; nothing here makes a domain decision.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	// Stores. Postgres when DATABASE_URL is set, seeded memory otherwise.
	var (
		officeStore directory.Store
		jobStore    job.Store
	)
	if cfg.Postgres.URL != "" {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		officeStore = directory.NewPostgres(db)
		jobStore = job.NewPostgres(db)
		checks["postgres"] = func() error { return db.Ping() }
	} else {
		officeMem := directory.NewInMemory()
		directory.SeedDevOffices(officeMem)
		officeStore = officeMem
		jobStore = job.NewInMemory()
		log.Warn("DATABASE_URL not set, using seeded in-memory stores")
	}

	// Redis, when configured, replaces the job store so status survives
	// process restarts without a relational database.
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		jobStore = job.NewRedis(redisClient.Client)
		checks["redis"] = func() error { return redisClient.Health(context.Background()) }
		log.Info("using redis job store")
	}

	messageStore := message.NewInMemory()
	message.SeedDevMessages(messageStore)

	resolver := address.NewResolver(address.NewHTTPGeocoder(cfg.Geocoder), log)
	officeDirectory := directory.New(officeStore, log)

	worker := delivery.NewWorker(
		officeStore,
		messageStore,
		delivery.NewUpperSubmitter(cfg.Submit),
		delivery.NewLowerSubmitter(cfg.Submit),
		jobStore,
		cfg.Delivery.MaxAttempts,
		cfg.Delivery.RetryBaseDelay,
		deliverymetrics.New(),
		log,
	)

	g, runCtx := errgroup.WithContext(ctx)

	var upperQueue, lowerQueue dispatch.Queue
	switch cfg.Delivery.QueueDriver {
	case "kafka":
		if err := dispatch.EnsureLaneTopics(ctx, cfg.Kafka.Brokers); err != nil {
			log.Error("failed to create lane topics", "error", err)
			os.Exit(1)
		}
		producer, err := dispatch.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("failed to connect kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		upperQueue = dispatch.NewKafkaQueue(producer, dispatch.TopicUpper)
		lowerQueue = dispatch.NewKafkaQueue(producer, dispatch.TopicLower)

		for _, topic := range []string{dispatch.TopicUpper, dispatch.TopicLower} {
			lane, err := dispatch.NewKafkaLane(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, worker.Handle, log)
			if err != nil {
				log.Error("failed to start kafka lane", "topic", topic, "error", err)
				os.Exit(1)
			}
			g.Go(func() error { return lane.Run(runCtx) })
		}
		log.Info("delivery lanes running on kafka", "brokers", cfg.Kafka.Brokers)
	default:
		upperLane := dispatch.NewLane("upper", cfg.Delivery.UpperLaneWorkers, cfg.Delivery.LaneBuffer, worker.Handle, log)
		lowerLane := dispatch.NewLane("lower", cfg.Delivery.LowerLaneWorkers, cfg.Delivery.LaneBuffer, worker.Handle, log)
		g.Go(func() error { return upperLane.Run(runCtx) })
		g.Go(func() error { return lowerLane.Run(runCtx) })
		upperQueue = upperLane
		lowerQueue = lowerLane
	}

	dispatcher := dispatch.NewDispatcher(upperQueue, lowerQueue, log)
	jobSvc := jobservice.NewJobService(
		resolver,
		officeDirectory,
		messageStore,
		jobStore,
		dispatcher,
		jobmetrics.New(),
		log,
	)
	aggregator := status.NewAggregator(jobSvc)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "herald", "herald")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    log,
		Validator: jwtService,
		Metrics:   platformmetrics.New(),
		Jobs:      jobhandler.New(jobSvc, aggregator, log),
		Address:   addresshandler.New(resolver, officeDirectory, log),
		Checks:    checks,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.Info("starting herald", "addr", cfg.Server.Addr, "queue_driver", cfg.Delivery.QueueDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
