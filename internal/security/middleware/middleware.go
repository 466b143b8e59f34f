package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/talentmatch/internal/security"
	"github.com/yourorg/talentmatch/internal/security/audit"
	"github.com/yourorg/talentmatch/internal/security/auth"
	"github.com/yourorg/talentmatch/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Browser websocket clients cannot set headers, so the stream
			// endpoint also accepts the token as a query parameter.
			tokenString := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				extracted, err := auth.ExtractToken(authHeader)
				if err != nil {
					http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
					return
				}
				tokenString = extracted
			} else if strings.HasPrefix(r.URL.Path, "/ws/") {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// permissionFor maps a routed request to the permission it requires.
func permissionFor(method, path string) (security.Permission, bool) {
	switch {
	case method == http.MethodPost && path == "/api/swipe/jobseeker":
		return security.PermSwipeAsJobseeker, true
	case method == http.MethodPost && path == "/api/swipe/employer":
		return security.PermSwipeAsEmployer, true
	case method == http.MethodGet && path == "/api/matches/feed":
		return security.PermViewFeed, true
	case method == http.MethodGet && path == "/api/matches":
		return security.PermListMatches, true
	case method == http.MethodPost && strings.HasSuffix(path, "/share-jobs"):
		return security.PermShareJobs, true
	case method == http.MethodPost && strings.HasSuffix(path, "/schedule"):
		return security.PermScheduleMeeting, true
	case method == http.MethodPost && strings.HasSuffix(path, "/interest"):
		return security.PermExpressInterest, true
	case path == "/ws/matches":
		return security.PermStreamEvents, true
	}
	return "", false
}

// AuthorizationMiddleware rejects requests whose token role lacks the
// permission for the routed action. Runs after JWTMiddleware.
func AuthorizationMiddleware(authz *security.AuthorizationService, auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			perm, known := permissionFor(r.Method, r.URL.Path)
			if !known {
				next.ServeHTTP(w, r)
				return
			}

			if err := authz.ValidatePermission(security.Role(claims.Role), perm); err != nil {
				auditLog.LogDenied(r.Context(), claims.UserID, claims.Role, string(perm))
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if !limiter.Allow(userID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			role := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
				role = claims.Role
			}

			if r.Method == http.MethodPost {
				switch {
				case strings.HasPrefix(r.URL.Path, "/api/swipe/"):
					auditLog.LogSwipe(r.Context(), userID, role, "", "initiated", "")
				case strings.HasSuffix(r.URL.Path, "/share-jobs"):
					auditLog.LogShareJobs(r.Context(), userID, role, pathSegment(r.URL.Path, 2), "initiated", "")
				case strings.HasSuffix(r.URL.Path, "/interest"):
					auditLog.LogJobInterest(r.Context(), userID, role, pathSegment(r.URL.Path, 2), "initiated", "")
				case strings.HasSuffix(r.URL.Path, "/schedule"):
					auditLog.LogSchedule(r.Context(), userID, role, pathSegment(r.URL.Path, 2), "initiated", "")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pathSegment returns the n-th segment of the path, counting from zero
// after the leading slash, e.g. pathSegment("/api/matches/m1/schedule", 2)
// is "m1".
func pathSegment(path string, n int) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
