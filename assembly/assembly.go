package assembly

import (
	"context"

	"interview-gate-service/conf"
	"interview-gate-service/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/bootstrap"
	"github.com/txix-open/isp-kit/cluster"
	"github.com/txix-open/isp-kit/grpc/client"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/log"
)

const (
	accountModuleName = "account-service"
	aiModuleName      = "interview-ai-service"
)

type Assembly struct {
	boot        *bootstrap.Bootstrap
	server      *http.Server
	logger      *log.Adapter
	redisCli    redis.UniversalClient
	pgPool      *pgxpool.Pool
	accountCli  *client.Client
	aiCli       *client.Client
	registry    *prometheus.Registry
	gateMetrics *metrics.Gate
}

func New(boot *bootstrap.Bootstrap) (*Assembly, error) {
	server := http.NewServer(boot.App.Logger())

	accountCli, err := client.Default()
	if err != nil {
		return nil, errors.WithMessage(err, "create account cli")
	}

	aiCli, err := client.Default()
	if err != nil {
		return nil, errors.WithMessage(err, "create ai cli")
	}

	registry := prometheus.NewRegistry()

	return &Assembly{
		boot:        boot,
		server:      server,
		logger:      boot.App.Logger(),
		accountCli:  accountCli,
		aiCli:       aiCli,
		registry:    registry,
		gateMetrics: metrics.NewGate(registry),
	}, nil
}

func (a *Assembly) ReceiveConfig(ctx context.Context, remoteConfig []byte) error {
	var (
		newCfg  conf.Remote
		prevCfg conf.Remote
	)
	err := a.boot.RemoteConfig.Upgrade(remoteConfig, &newCfg, &prevCfg)
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "upgrade remote config"))
	}
	err = newCfg.Validate()
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "invalid remote config"))
	}

	a.logger.SetLevel(newCfg.Logging.LogLevel)

	newRedisCli := a.redisClient(*newCfg.Redis)
	newPgPool, err := pgxpool.New(ctx, newCfg.Postgres.Dsn)
	if err != nil {
		return errors.WithMessage(err, "create pgx pool")
	}

	locator := NewLocator(a.logger, a.accountCli, a.aiCli, a.gateMetrics, a.registry)
	handler := locator.Handler(newCfg, newRedisCli, newPgPool)

	a.server.Upgrade(handler)

	if a.redisCli != nil {
		_ = a.redisCli.Close()
	}
	a.redisCli = newRedisCli
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	a.pgPool = newPgPool

	return nil
}

func (a *Assembly) Runners() []app.Runner {
	eventHandler := cluster.NewEventHandler().
		RemoteConfigReceiver(a)
	eventHandler.RequireModule(accountModuleName, a.accountCli)
	eventHandler.RequireModule(aiModuleName, a.aiCli)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(a.boot.BindingAddress)
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			return a.boot.ClusterCli.Run(ctx, eventHandler)
		}),
	}
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		a.boot.ClusterCli,
		app.CloserFunc(func() error {
			return a.server.Shutdown(context.Background())
		}),
		a.accountCli,
		a.aiCli,
		app.CloserFunc(func() error {
			if a.redisCli != nil {
				return a.redisCli.Close()
			}
			return nil
		}),
		app.CloserFunc(func() error {
			if a.pgPool != nil {
				a.pgPool.Close()
			}
			return nil
		}),
	}
}

func (a *Assembly) redisClient(config conf.Redis) redis.UniversalClient {
	if config.Sentinel != nil {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Sentinel.MasterName,
			SentinelAddrs:    config.Sentinel.Addresses,
			SentinelUsername: config.Sentinel.Username,
			SentinelPassword: config.Sentinel.Password,
			Username:         config.Username,
			Password:         config.Password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
	})
}
