package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/internal/server/response"
)

// AuthConfig configures API key checks.
type AuthConfig struct {
	Enabled     bool
	APIKey      string
	HeaderName  string
	PublicPaths []string
}

// DefaultAuthConfig keeps the health and readiness probes public.
func DefaultAuthConfig(prefix string) AuthConfig {
	return AuthConfig{
		HeaderName:  "X-API-Key",
		PublicPaths: []string{"/health", prefix + "/health", prefix + "/ready"},
	}
}

func (c AuthConfig) public(r *http.Request) bool {
	return !c.Enabled || r.Method == http.MethodOptions || slices.Contains(c.PublicPaths, r.URL.Path)
}

// valid compares in constant time. An empty configured key rejects all.
func (c AuthConfig) valid(key string) bool {
	return c.APIKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(c.APIKey)) == 1
}

// Auth rejects requests to non-public paths without the API key.
func Auth(config AuthConfig, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.public(r) {
				next.ServeHTTP(w, r)
				return
			}
			key := apiKey(r, config.HeaderName)
			if !config.valid(key) {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_provided", key != "").
					Msg("Authentication failed")
				response.Unauthorized(w, "", "Provide a valid API key in the "+config.HeaderName+" header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// apiKey reads the configured header first, then a bearer token.
func apiKey(r *http.Request, header string) string {
	if header != "" {
		if key := r.Header.Get(header); key != "" {
			return key
		}
	}
	auth := r.Header.Get("Authorization")
	if key, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return key
	}
	return auth
}
