package cli

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/config"
	"catalog/internal/events"
	"catalog/internal/infra/db"
	"catalog/internal/infra/memstore"
	infraRepo "catalog/internal/infra/repository"
	"catalog/internal/observability"
	repo "catalog/internal/repository"
	"catalog/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 起動に必要な部品をまとめたもの
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	registry *prometheus.Registry
	uc       *usecase.ProductUsecase

	closers []func(context.Context) error
}

type stores struct {
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	txm       repo.TransactionManager
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := observability.NewLogger(cfg.GoEnv)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error {
		_ = logger.Sync()
		return nil
	})

	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracing)
	a.tracer = otel.Tracer(config.ServiceName)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := a.openStores()
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = kp
		a.closers = append(a.closers, func(context.Context) error { return kp.Close() })
		logger.Info("stock events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	a.uc = usecase.NewProductUsecase(
		st.products,
		st.inventory,
		st.txm,
		publisher,
		observability.NewMetrics(a.registry),
		logger,
		a.tracer,
	)
	return a, nil
}

func (a *app) openStores() (stores, error) {
	if a.cfg.StoreDriver == config.StoreDriverMemory {
		a.logger.Info("using in-memory store")
		s := memstore.New()
		return stores{products: s, inventory: s, txm: s}, nil
	}

	gormDB, err := db.Connect(a.cfg)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	if err := db.Migrate(gormDB); err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}

	//Repository（GORM実装）生成
	return stores{
		products:  infraRepo.NewProductGormRepository(gormDB),
		inventory: infraRepo.NewInventoryGormRepository(gormDB),
		txm:       infraRepo.NewTxManagerGorm(gormDB),
	}, nil
}

// 後から開いたものを先に閉じる
func (a *app) close(ctx context.Context) error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, a.closers[i](ctx))
	}
	a.closers = nil
	return err
}
