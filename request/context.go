package request

import (
	"context"
	"net/http"
	"strings"

	"interview-gate-service/domain"
	"interview-gate-service/entity"

	"github.com/pkg/errors"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrCandidateNotResolved = errors.New("candidate is not resolved")
)

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string

	authenticated bool
	authData      *domain.AuthData

	candidate *entity.Candidate

	queryParams map[string]string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

func (c *Context) Authenticate(authData domain.AuthData) {
	c.authenticated = true
	c.authData = &authData
}

func (c *Context) GetAuthData() (domain.AuthData, error) {
	if !c.authenticated {
		return domain.AuthData{}, ErrNotAuthenticated
	}
	return *c.authData, nil
}

func (c *Context) SetCandidate(candidate entity.Candidate) {
	c.candidate = &candidate
}

func (c *Context) Candidate() (entity.Candidate, error) {
	if c.candidate == nil {
		return entity.Candidate{}, ErrCandidateNotResolved
	}
	return *c.candidate, nil
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *Context) Param(name string) string {
	value := c.request.Header.Get(name)
	if value != "" {
		return strings.TrimSpace(value)
	}

	if c.queryParams == nil {
		query := c.request.URL.Query()
		c.queryParams = map[string]string{}
		for key, values := range query {
			if len(values) == 0 {
				continue
			}
			c.queryParams[strings.ToLower(key)] = values[0]
		}
	}
	value = c.queryParams[strings.ToLower(name)]

	return strings.TrimSpace(value)
}
