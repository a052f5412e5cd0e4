// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"go.uber.org/zap"
)

// genericMessage is shown for every dependency failure. Details stay in the log.
const genericMessage = "Something went wrong. Please try again."

// Response is the JSON body of every error reply.
type Response struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorLogger writes JSON error replies and logs the ones that are our fault.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger. A nil logger discards output.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(k apierr.Kind) int {
	switch k {
	case apierr.KindAuthentication:
		return http.StatusUnauthorized
	case apierr.KindValidation:
		return http.StatusBadRequest
	case apierr.KindConflict:
		return http.StatusConflict
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Write classifies err and replies accordingly. Dependency errors (and any
// unclassified error) are logged with msg and answered with a generic message.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kind := apierr.KindOf(err)
	if kind == apierr.KindDependency {
		e.LogServerError(w, r, msg, err)
		return
	}

	resp := Response{Error: err.Error()}
	var ae *apierr.Error
	if stderrors.As(err, &ae) {
		resp.Error = ae.Message
		resp.Field = ae.Field
	}
	if resp.Error == "" {
		resp.Error = http.StatusText(StatusFor(kind))
	}
	WriteJSON(w, StatusFor(kind), resp)
}

// LogServerError logs err with request context and replies 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	e.Log.Error(msg, append(requestFields(r, err), fields...)...)
	WriteJSON(w, http.StatusInternalServerError, Response{Error: genericMessage})
}

// LogBadRequest logs at warn level and replies 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg, requestFields(r, err)...)
	WriteJSON(w, http.StatusBadRequest, Response{Error: userMsg})
}

func requestFields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}
	return fields
}

// NotFound replies 404 with msg.
func NotFound(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusNotFound, Response{Error: msg})
}

// Forbidden replies 403 with msg.
func Forbidden(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusForbidden, Response{Error: msg})
}

// BadRequest replies 400 with msg and the offending field, if any.
func BadRequest(w http.ResponseWriter, msg, field string) {
	WriteJSON(w, http.StatusBadRequest, Response{Error: msg, Field: field})
}

// WriteJSON writes v as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
