package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
)

// withToken hands the bearer token of the request to the server adapter, so
// the web app stays the owner of the session.
//
// A request without an "Authorization" header keeps the token the adapter
// already holds. A malformed header or an expired token is rejected with
// 401 before anything reaches the server; the signature is left for the
// server to verify.
func (h *Handler) withToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withToken").Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		if err = utils.CheckTokenExpiry(token, h.now()); err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				log.Err(err).Msg("token expired")
			} else {
				log.Err(err).Msg("error occurred during parsing token")
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if userID, err := utils.ParseUserIDFromJWT(token); err == nil {
			log.Debug().Int64("user_id", userID).Msg("session token updated")
		}

		h.tokens.SetToken(token)
		next.ServeHTTP(w, r)
	})
}
