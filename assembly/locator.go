package assembly

import (
	"net/http"
	"time"

	"interview-gate-service/conf"
	"interview-gate-service/handler"
	"interview-gate-service/metrics"
	"interview-gate-service/middleware"
	"interview-gate-service/repository"
	"interview-gate-service/routes"
	"interview-gate-service/service"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/grpc/client"
	"github.com/txix-open/isp-kit/log"
)

type Locator struct {
	logger      log.Logger
	accountCli  *client.Client
	aiCli       *client.Client
	gateMetrics *metrics.Gate
	registry    *prometheus.Registry
}

func NewLocator(
	logger log.Logger,
	accountCli *client.Client,
	aiCli *client.Client,
	gateMetrics *metrics.Gate,
	registry *prometheus.Registry,
) Locator {
	return Locator{
		logger:      logger,
		accountCli:  accountCli,
		aiCli:       aiCli,
		gateMetrics: gateMetrics,
		registry:    registry,
	}
}

func (l Locator) Handler(config conf.Remote, redisCli redis.UniversalClient, pgPool *pgxpool.Pool) http.Handler {
	accountRepo := repository.NewAccount(l.accountCli)
	authenticationCache := repository.NewAuthenticationCache(
		time.Duration(config.Caching.AuthenticationDataInSec) * time.Second,
	)
	auth := service.NewAuth(authenticationCache, accountRepo)

	rateLimitRepo := repository.NewRateLimit(redisCli)
	rateLimit := service.NewRateLimit(rateLimitRepo, routes.NewTable(), config.RateLimit, l.gateMetrics, l.logger)

	candidateRepo := repository.NewCandidate(pgPool)
	applicationRepo := repository.NewApplication(pgPool)
	credit := service.NewCredit(candidateRepo, l.gateMetrics)

	completionRepo := repository.NewCompletion(l.aiCli)
	interview := service.NewInterview(applicationRepo, credit, completionRepo, l.logger)

	interviewHandler := handler.NewInterview(interview)
	candidateHandler := handler.NewCandidate(credit)

	guard := []middleware.Middleware{
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable),
		middleware.ErrorHandler(l.logger),
		middleware.Authenticate(auth),
		middleware.ResolveCandidate(candidateRepo),
		middleware.RateLimit(rateLimit),
	}
	creditGuard := append(append([]middleware.Middleware{}, guard...), middleware.RequireCredits(credit))

	maxReqBodySize := config.Http.MaxRequestBodySizeInMb * 1024 * 1024 //nolint:mnd

	entrypoint := func(root middleware.HandlerFunc, middlewares []middleware.Middleware) http.Handler {
		return middleware.Entrypoint(maxReqBodySize, middleware.Chain(root, middlewares...), l.logger)
	}

	router := mux.NewRouter()
	router.Handle("/api/interview/start", entrypoint(interviewHandler.Start, creditGuard)).
		Methods(http.MethodPost)
	router.Handle("/api/interview/converse", entrypoint(interviewHandler.Converse, guard)).
		Methods(http.MethodPost)
	router.Handle("/api/interview/save", entrypoint(interviewHandler.Save, guard)).
		Methods(http.MethodPost)
	router.Handle("/api/candidate/credits", entrypoint(candidateHandler.Credits, guard)).
		Methods(http.MethodGet)
	router.Handle("/internal/metrics", promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})).
		Methods(http.MethodGet)

	return router
}
