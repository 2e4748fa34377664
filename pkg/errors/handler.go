package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"symptocare-backend/pkg/common"
)

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler writes error replies and logs them once
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a handler. In debug mode plain error messages
// and stack traces reach the client.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle maps err to a status and body and writes it
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, body, fields := h.describe(err)
	body.Error = true
	body.RequestID = common.ExtractRequestID(r)

	fields = append(fields,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", body.RequestID),
	)
	level := zapcore.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	h.logger.Log(level, body.Message, fields...)

	h.write(w, status, body)
}

func (h *ErrorHandler) describe(err error) (int, ErrorResponse, []zap.Field) {
	var (
		fieldErrs *ValidationErrors
		domainErr *DomainError
		appErr    *AppError
	)

	switch {
	case errors.As(err, &fieldErrs):
		details := make(map[string]interface{}, len(fieldErrs.Fields))
		for field, msgs := range fieldErrs.ToMap() {
			details[field] = msgs
		}
		body := ErrorResponse{
			Type:    string(KindValidation),
			Message: fieldErrs.Error(),
			Code:    "FIELD_VALIDATION_ERROR",
			Details: details,
		}
		return http.StatusBadRequest, body, []zap.Field{zap.Strings("fields", fieldErrs.fieldNames())}

	case errors.As(err, &domainErr):
		body := ErrorResponse{
			Type:    string(domainErr.Type),
			Message: domainErr.Message,
			Code:    domainErr.Code,
		}
		if len(domainErr.Details) > 0 {
			body.Details = domainErr.Details
		}
		return domainErr.Status(), body, []zap.Field{zap.String("errorCode", domainErr.Code)}

	case errors.As(err, &appErr):
		status := appErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		body := ErrorResponse{Type: string(appErr.Kind), Message: appErr.Message}
		if h.debug && appErr.stack != "" {
			body.Details = map[string]interface{}{"stack_trace": appErr.stack}
		}
		fields := []zap.Field{zap.String("errorKind", string(appErr.Kind))}
		if appErr.Cause != nil {
			fields = append(fields, zap.Error(appErr.Cause))
		}
		return status, body, fields

	default:
		body := ErrorResponse{Type: string(KindInternal), Message: "An internal error occurred"}
		if h.debug {
			body.Message = err.Error()
		}
		return http.StatusInternalServerError, body, []zap.Field{zap.Error(err)}
	}
}

// HandleStatus writes a reply for a failure that has no error value, such
// as a missing token
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := ErrorResponse{
		Error:     true,
		Type:      string(kindForStatus(status)),
		Message:   message,
		RequestID: common.ExtractRequestID(r),
	}

	h.logger.Warn(message,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)

	h.write(w, status, body)
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed:
		return KindValidation
	case http.StatusUnauthorized:
		return kindUnauthorized
	case http.StatusNotFound:
		return kindNotFound
	case http.StatusTooManyRequests:
		return kindRateLimit
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}

// Middleware turns handler panics into 500 replies
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}
