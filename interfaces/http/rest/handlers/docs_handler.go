package handlers

import (
	"net/http"

	"github.com/swaggo/swag"

	"symptocare-backend/docs"
	pkgerrors "symptocare-backend/pkg/errors"
)

// APIDoc serves the OpenAPI document registered by the docs package. The
// host is left empty so clients resolve paths against this server.
func APIDoc(errs *pkgerrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			errs.Handle(w, r, pkgerrors.NewInternalError("API document is not registered"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}
}
