package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/api/apierr"
	"github.com/klfajardo/registro-evento-chile/internal/model"
)

type contextKey string

const stationContextKey contextKey = "station"

// Station headers sent by each kiosk
const (
	HeaderSite       = "X-Sede"
	HeaderRole       = "X-Rol"
	HeaderSessionID  = "X-Session-Id"
	HeaderAdminToken = "X-Admin-Token"
)

// AdminToken requires the X-Admin-Token header to equal token.
// An empty token disables the check.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAdminToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				apierr.WriteError(w, model.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Station reads the kiosk headers into a model.Station on the request context
func Station(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := model.Station{
			Site:      strings.TrimSpace(r.Header.Get(HeaderSite)),
			Role:      strings.TrimSpace(r.Header.Get(HeaderRole)),
			SessionID: strings.TrimSpace(r.Header.Get(HeaderSessionID)),
		}
		ctx := context.WithValue(r.Context(), stationContextKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStation returns the station from context; the zero Station if absent
func GetStation(ctx context.Context) model.Station {
	st, _ := ctx.Value(stationContextKey).(model.Station)
	return st
}
