package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/cache"
	"github.com/linkpage/linkpage/internal/model"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// IdentityCache maps auth provider subjects to internal user ids.
type IdentityCache interface {
	GetUserID(ctx context.Context, externalID string) (int64, error)
	SetUserID(ctx context.Context, externalID string, userID int64) error
}

// UserStore provisions the internal user row for a subject.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, externalID, email string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	Cache    IdentityCache // optional
	Users    UserStore
}

const msgSignIn = "Sign in to continue"

// Auth authenticates owner requests with a bearer session token issued by
// the auth provider. The first request of a new subject creates its user row.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			fail := func(reason string) {
				logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", ClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(ctx)),
				)
				writeError(w, http.StatusUnauthorized, msgSignIn)
			}

			token := bearerToken(r)
			if token == "" {
				fail("missing_token")
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					fail("expired_token")
				} else {
					fail("invalid_token")
				}
				return
			}

			userID, cacheHit, err := resolveUser(ctx, cfg, claims)
			if err != nil {
				logger.Error("user lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(ctx)),
				)
				writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
				return
			}

			logger.Debug("authentication successful",
				slog.Int64("user_id", userID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(ctx)),
			)

			id := &auth.Identity{UserID: userID, ExternalID: claims.Subject, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(ctx, id)))
		})
	}
}

func resolveUser(ctx context.Context, cfg AuthConfig, claims *auth.Claims) (int64, bool, error) {
	if cfg.Cache != nil {
		id, err := cfg.Cache.GetUserID(ctx, claims.Subject)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			cfg.Logger.Warn("identity cache read failed", slog.String("error", err.Error()))
		}
	}

	user, err := cfg.Users.GetOrCreateUser(ctx, claims.Subject, claims.Email)
	if err != nil {
		return 0, false, err
	}

	if cfg.Cache != nil {
		if err := cfg.Cache.SetUserID(ctx, claims.Subject, user.ID); err != nil {
			cfg.Logger.Warn("identity cache write failed", slog.String("error", err.Error()))
		}
	}
	return user.ID, false, nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
