// Package handlers holds the JSON endpoints of the REST API
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"symptocare-backend/pkg/auth"
	"symptocare-backend/pkg/common"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/utils"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
)

// responder carries what every handler needs to answer a request
type responder struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

func newResponder(errs *pkgerrors.ErrorHandler, logger *zap.Logger) responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errs == nil {
		errs = pkgerrors.NewErrorHandler(logger, false)
	}
	return responder{errors: errs, logger: logger}
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := common.WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(w, r, err)
}

// userID returns the authenticated caller or answers 401
func (h responder) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return user.UserID, true
}

// decode reads a JSON body, answering 400 on failure
func (h responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.DecodeJSON(w, r, v); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return false
	}
	return true
}

// days reads the ?days= window, answering 400 when it is out of range
func (h responder) days(w http.ResponseWriter, r *http.Request) (int, bool) {
	days, err := utils.ParseDaysParam(r.URL.Query().Get("days"), defaultWindowDays, maxWindowDays)
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return 0, false
	}
	return days, true
}
