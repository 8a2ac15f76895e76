package main

import (
	"context"
	"flag"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/mintworks/relaygraph/internal/config"
	"github.com/mintworks/relaygraph/internal/infra/database"
	"github.com/mintworks/relaygraph/internal/infra/repository"
	"github.com/mintworks/relaygraph/internal/ingest"
	"github.com/mintworks/relaygraph/internal/present/rest"
	"github.com/mintworks/relaygraph/internal/usecase"
)

func setupTraceProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("relaygraph"),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.MigratePostgres(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	if conf.Server.EnableTrace {
		ctx := context.Background()
		tp, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			log.Fatalf("failed to set up tracing: %v", err)
		}
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("failed to shut down tracer provider: %v", err)
			}
		}()
	}

	edgeRepo := repository.NewEdgeRepository(db, rdb)
	activityRepo := repository.NewActivityRepository(db, rdb)
	bidRepo := repository.NewBidRepository(db, mc)

	graphUsecase := usecase.NewGraphUsecase(edgeRepo)
	activityUsecase := usecase.NewActivityUsecase(activityRepo)
	bidUsecase := usecase.NewBidUsecase(bidRepo, conf.Blocklist)
	ingestUsecase := usecase.NewIngestUsecase(ingest.NewNormalizer(), activityRepo)

	handler := rest.NewHandler(graphUsecase, activityUsecase, bidUsecase, ingestUsecase)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("relaygraph"))
	}

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
