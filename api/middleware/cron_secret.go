package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/careswap-app/careswap-backend/api/responses"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

const cronSecretHeader = "X-Cron-Secret"

// CronSecret gates scheduler-facing routes behind a shared secret header.
func CronSecret(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cron secret not configured"))
				return
			}

			presented := r.Header.Get(cronSecretHeader)
			if presented == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing cron credentials"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid cron credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
