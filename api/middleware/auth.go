package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	pkgauth "github.com/ajeitai/marketplace-backend/pkg/auth"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

type clientResolver interface {
	FindBySubject(ctx context.Context, subject string) (*models.Client, error)
}

type providerResolver interface {
	FindBySubject(ctx context.Context, subject string) (*models.Provider, error)
}

// Auth validates the bearer token and seeds the context with a tenant scope.
// Subjects without a profile yet keep an unresolved scope so they can still
// hit the registration endpoints.
func Auth(cfg config.JWTConfig, clients clientResolver, providers providerResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			scope := tenant.Scope{Subject: claims.Subject, Role: claims.Role}
			switch claims.Role {
			case enums.ActorRoleClient:
				client, err := clients.FindBySubject(r.Context(), claims.Subject)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve client profile"))
					return
				}
				if client != nil {
					scope.ClientID = &client.ID
				}
			case enums.ActorRoleProvider:
				provider, err := providers.FindBySubject(r.Context(), claims.Subject)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve provider profile"))
					return
				}
				if provider != nil {
					scope.ProviderID = &provider.ID
				}
			}

			ctx := tenant.WithScope(r.Context(), scope)
			if logg != nil {
				ctx = logg.WithSubject(ctx, claims.Subject)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireClient rejects requests whose scope does not resolve to a client
// profile.
func RequireClient(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, func(scope tenant.Scope) bool { return scope.IsClient() }, "client profile required")
}

// RequireProvider rejects requests whose scope does not resolve to a
// provider profile.
func RequireProvider(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, func(scope tenant.Scope) bool { return scope.IsProvider() }, "provider profile required")
}

func requireRole(logg *logger.Logger, allowed func(tenant.Scope) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := tenant.RequireScope(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !allowed(scope) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
