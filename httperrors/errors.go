package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	errorCode   string
	userMessage string
	headers     map[string]string
	fields      map[string]interface{}
	err         error
}

func New(statusCode int, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		errorCode:   http.StatusText(statusCode),
		userMessage: userMessage,
		err:         internalError,
	}
}

// WithCode overrides the machine-readable error code written to the body.
func (e HttpError) WithCode(code string) HttpError {
	e.errorCode = code
	return e
}

func (e HttpError) WithHeader(name string, value string) HttpError {
	headers := make(map[string]string, len(e.headers)+1)
	for k, v := range e.headers {
		headers[k] = v
	}
	headers[name] = value
	e.headers = headers
	return e
}

// WithField attaches an extra body field, e.g. creditsRemaining for 402 responses.
func (e HttpError) WithField(name string, value interface{}) HttpError {
	fields := make(map[string]interface{}, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[name] = value
	e.fields = fields
	return e
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	for name, value := range e.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)
	data := map[string]interface{}{
		"errorCode":    e.errorCode,
		"errorMessage": e.userMessage,
	}
	for name, value := range e.fields {
		data[name] = value
	}
	return json.NewEncoder(w).Encode(data)
}
