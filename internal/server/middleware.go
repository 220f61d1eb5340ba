package server

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
)

// requireCron protects admin endpoints with the scheduler bearer secret.
// The check runs before any handler work so a bad token never triggers a
// batch. The secret comes from config with CRON_SECRET as fallback.
func (s *Server) requireCron(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := s.config.CronSecret
		if secret == "" {
			secret = os.Getenv("CRON_SECRET")
		}
		if secret == "" {
			s.log.Warn("Admin API accessed but no cron secret configured")
			s.respondError(w, http.StatusForbidden, "admin API is disabled: no cron secret configured")
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			s.log.Warn("Rejected admin request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			s.respondError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
