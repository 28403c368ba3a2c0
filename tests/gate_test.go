// nolint:canonicalheader
package tests

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"interview-gate-service/domain"
	"interview-gate-service/entity"
	"interview-gate-service/handler"
	"interview-gate-service/metrics"
	"interview-gate-service/middleware"
	"interview-gate-service/repository"
	"interview-gate-service/routes"
	"interview-gate-service/service"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
)

const (
	validToken = "valid-token"
)

type authenticatorStub struct{}

func (s authenticatorStub) Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error) {
	if token != validToken {
		return &domain.AuthenticateResponse{
			Authenticated: false,
			ErrorReason:   "unknown token",
		}, nil
	}
	return &domain.AuthenticateResponse{
		Authenticated: true,
		AuthData:      &domain.AuthData{UserId: "u1", Role: "candidate"},
	}, nil
}

type limiterStub struct {
	result domain.RateLimitResult
}

func (s *limiterStub) Allow(ctx context.Context, endpoint string, actor string) (*domain.RateLimitResult, routes.Class, error) {
	result := s.result
	return &result, routes.ClassMedium, nil
}

// storeStub keeps candidates, credits and applications in memory and stands in
// for the postgres repositories.
type storeStub struct {
	mu        sync.Mutex
	byUserId  map[string]entity.Candidate
	credits   map[string]int
	apps      map[string]entity.InterviewApplication
	ledgerErr error
}

func newStoreStub(credits int, apps ...entity.InterviewApplication) *storeStub {
	candidate := entity.Candidate{Id: "c1", UserId: "u1", InterviewCredits: credits}
	store := &storeStub{
		byUserId: map[string]entity.Candidate{candidate.UserId: candidate},
		credits:  map[string]int{candidate.Id: credits},
		apps:     map[string]entity.InterviewApplication{},
	}
	for _, app := range apps {
		store.apps[app.Id] = app
	}
	return store
}

func (s *storeStub) FindByUserId(ctx context.Context, userId string) (*entity.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.byUserId[userId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &candidate, nil
}

func (s *storeStub) DecrementCredits(ctx context.Context, candidateId string) (int, error) {
	if s.ledgerErr != nil {
		return 0, s.ledgerErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.credits[candidateId]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if balance <= 0 {
		return 0, repository.ErrNoCredits
	}
	balance--
	s.credits[candidateId] = balance
	return balance, nil
}

func (s *storeStub) CreditsById(ctx context.Context, candidateId string) (int, error) {
	if s.ledgerErr != nil {
		return 0, s.ledgerErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.credits[candidateId]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return balance, nil
}

func (s *storeStub) FindById(ctx context.Context, applicationId string) (*entity.InterviewApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicationId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &app, nil
}

func (s *storeStub) MarkInterviewDone(ctx context.Context, applicationId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicationId]
	if !ok {
		return repository.ErrNotFound
	}
	app.IsInterviewDone = true
	s.apps[applicationId] = app
	return nil
}

func (s *storeStub) SaveResult(
	ctx context.Context,
	applicationId string,
	transcript string,
	evaluationScore int,
	evaluationSummary string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicationId]
	if !ok {
		return repository.ErrNotFound
	}
	app.Transcript = transcript
	app.EvaluationScore = evaluationScore
	app.EvaluationSummary = evaluationSummary
	s.apps[applicationId] = app
	return nil
}

type completionStub struct{}

func (s completionStub) Complete(ctx context.Context, request domain.CompletionRequest) (*domain.CompletionResponse, error) {
	return &domain.CompletionResponse{Reply: "ok"}, nil
}

type GateTestSuite struct {
	suite.Suite
}

func TestGate(t *testing.T) {
	t.Parallel()
	suite.Run(t, &GateTestSuite{})
}

func (s *GateTestSuite) gateServer(test *test.Test, store *storeStub, limiter *limiterStub) *httptest.Server {
	logger := test.Logger()
	gateMetrics := metrics.NewGate(prometheus.NewRegistry())

	credit := service.NewCredit(store, gateMetrics)
	interview := service.NewInterview(store, credit, completionStub{}, logger)
	interviewHandler := handler.NewInterview(interview)
	candidateHandler := handler.NewCandidate(credit)

	guard := []middleware.Middleware{
		middleware.RequestId(),
		middleware.Logger(logger, true),
		middleware.ErrorHandler(logger),
		middleware.Authenticate(authenticatorStub{}),
		middleware.ResolveCandidate(store),
		middleware.RateLimit(limiter),
	}
	creditGuard := append(append([]middleware.Middleware{}, guard...), middleware.RequireCredits(credit))

	entrypoint := func(root middleware.HandlerFunc, middlewares []middleware.Middleware) http.Handler {
		return middleware.Entrypoint(1024*1024, middleware.Chain(root, middlewares...), logger)
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

	srv := httptest.NewServer(router)
	s.T().Cleanup(srv.Close)
	return srv
}

func allowingLimiter() *limiterStub {
	return &limiterStub{result: domain.RateLimitResult{
		Allowed:           true,
		Limit:             30,
		Remaining:         29,
		ResetEpochSeconds: 2000,
	}}
}

func (s *GateTestSuite) invoke(
	require *require.Assertions,
	method string,
	url string,
	token string,
	body interface{},
) (*http.Response, map[string]interface{}) {
	var reqBody bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&reqBody).Encode(body)
		require.NoError(err)
	}
	req, err := http.NewRequest(method, url, &reqBody)
	require.NoError(err)
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })

	decoded := map[string]interface{}{}
	err = json.NewDecoder(resp.Body).Decode(&decoded)
	require.NoError(err)
	return resp, decoded
}

func (s *GateTestSuite) TestMissingTokenIsUnauthorized() {
	test, require := test.New(s.T())
	srv := s.gateServer(test, newStoreStub(3), allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", "",
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusUnauthorized, resp.StatusCode)
	require.EqualValues("Unauthenticated", body["errorCode"])
}

func (s *GateTestSuite) TestInvalidTokenIsUnauthorized() {
	test, require := test.New(s.T())
	srv := s.gateServer(test, newStoreStub(3), allowingLimiter())

	resp, body := s.invoke(require, http.MethodGet, srv.URL+"/api/candidate/credits", "garbage", nil)
	require.EqualValues(http.StatusUnauthorized, resp.StatusCode)
	require.EqualValues("Unauthenticated", body["errorCode"])
}

func (s *GateTestSuite) TestMissingProfileIsNotFound() {
	test, require := test.New(s.T())
	store := newStoreStub(3)
	delete(store.byUserId, "u1")
	srv := s.gateServer(test, store, allowingLimiter())

	resp, body := s.invoke(require, http.MethodGet, srv.URL+"/api/candidate/credits", validToken, nil)
	require.EqualValues(http.StatusNotFound, resp.StatusCode)
	require.EqualValues("ProfileNotFound", body["errorCode"])
}

func (s *GateTestSuite) TestRateLimitedResponse() {
	test, require := test.New(s.T())
	limiter := &limiterStub{result: domain.RateLimitResult{
		Allowed:           false,
		Limit:             5,
		Remaining:         0,
		ResetEpochSeconds: 1234,
	}}
	srv := s.gateServer(test, newStoreStub(3), limiter)

	resp, body := s.invoke(require, http.MethodGet, srv.URL+"/api/candidate/credits", validToken, nil)
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode)
	require.EqualValues("RateLimited", body["errorCode"])
	require.EqualValues("5", resp.Header.Get("limit"))
	require.EqualValues("0", resp.Header.Get("remaining"))
	require.EqualValues("1234", resp.Header.Get("reset-epoch-seconds"))
}

func (s *GateTestSuite) TestExhaustedCreditsResponse() {
	test, require := test.New(s.T())
	srv := s.gateServer(test, newStoreStub(0), allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", validToken,
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusPaymentRequired, resp.StatusCode)
	require.EqualValues("CreditExhausted", body["errorCode"])
	require.EqualValues(0, body["creditsRemaining"])
	require.EqualValues(true, body["upgradeRequired"])
}

func (s *GateTestSuite) TestUnavailableLedgerRefusesRequest() {
	test, require := test.New(s.T())
	store := newStoreStub(3)
	store.ledgerErr = errors.New("connection refused")
	srv := s.gateServer(test, store, allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", validToken,
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusServiceUnavailable, resp.StatusCode)
	require.EqualValues("DependencyUnavailable", body["errorCode"])
}

func (s *GateTestSuite) TestStartHappyPath() {
	test, require := test.New(s.T())
	store := newStoreStub(2, entity.InterviewApplication{Id: "a1", CandidateId: "c1"})
	srv := s.gateServer(test, store, allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", validToken,
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusOK, resp.StatusCode)
	require.EqualValues("a1", body["applicationId"])
	require.EqualValues(1, body["creditsRemaining"])
	require.EqualValues("30", resp.Header.Get("limit"))
	require.EqualValues("29", resp.Header.Get("remaining"))

	// restarting a finished interview conflicts instead of charging again
	resp, body = s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", validToken,
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusConflict, resp.StatusCode)
	require.EqualValues("AlreadyCompleted", body["errorCode"])

	balance, err := store.CreditsById(context.Background(), "c1")
	require.NoError(err)
	require.EqualValues(1, balance)
}

func (s *GateTestSuite) TestForeignApplicationIsForbidden() {
	test, require := test.New(s.T())
	store := newStoreStub(3, entity.InterviewApplication{Id: "a1", CandidateId: "other"})
	srv := s.gateServer(test, store, allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/start", validToken,
		domain.StartRequest{ApplicationId: "a1"})
	require.EqualValues(http.StatusForbidden, resp.StatusCode)
	require.EqualValues("Forbidden", body["errorCode"])
}

func (s *GateTestSuite) TestCreditsEndpoint() {
	test, require := test.New(s.T())
	srv := s.gateServer(test, newStoreStub(7), allowingLimiter())

	resp, body := s.invoke(require, http.MethodGet, srv.URL+"/api/candidate/credits", validToken, nil)
	require.EqualValues(http.StatusOK, resp.StatusCode)
	require.EqualValues(7, body["creditsRemaining"])
}

func (s *GateTestSuite) TestConverseAndSave() {
	test, require := test.New(s.T())
	store := newStoreStub(1, entity.InterviewApplication{Id: "a1", CandidateId: "c1"})
	srv := s.gateServer(test, store, allowingLimiter())

	resp, body := s.invoke(require, http.MethodPost, srv.URL+"/api/interview/converse", validToken,
		domain.ConverseRequest{ApplicationId: "a1", Message: "hello"})
	require.EqualValues(http.StatusOK, resp.StatusCode)
	require.EqualValues("ok", body["reply"])

	resp, body = s.invoke(require, http.MethodPost, srv.URL+"/api/interview/save", validToken,
		domain.SaveRequest{ApplicationId: "a1", Transcript: "full transcript", EvaluationScore: 80})
	require.EqualValues(http.StatusOK, resp.StatusCode)
	require.EqualValues(true, body["saved"])

	// neither call spends a credit
	balance, err := store.CreditsById(context.Background(), "c1")
	require.NoError(err)
	require.EqualValues(1, balance)
}
