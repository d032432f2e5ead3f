package http

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-progression/internal/certificate"
)

type CertificateVerifier interface {
	Verify(ctx context.Context, number string) (certificate.Payload, error)
}

// GET /certificates/{number}/verify  (public; QR code target)
func VerifyCertificateHandler(v CertificateVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := v.Verify(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			if errors.Is(err, certificate.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody{Error: "certificate not found"})
				return
			}
			log.Printf("verify certificate: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyHandler reports 503 until the database answers a ping.
func ReadyHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			log.Printf("readyz: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
