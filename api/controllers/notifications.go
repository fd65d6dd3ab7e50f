package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/api/validators"
	"github.com/ajeitai/marketplace-backend/internal/notifications"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

func recipientFromScope(scope tenant.Scope) (enums.ActorRole, uuid.UUID, error) {
	switch {
	case scope.IsClient():
		id, err := scope.RequireClient()
		return enums.ActorRoleClient, id, err
	case scope.IsProvider():
		id, err := scope.RequireProvider()
		return enums.ActorRoleProvider, id, err
	}
	return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile required")
}

// ListNotifications returns the caller's notification feed.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, recipientID, err := recipientFromScope(scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), role, recipientID, unreadOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newNotificationViews(list))
	}
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, recipientID, err := recipientFromScope(scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := validators.PathUUID(r, "notificationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), recipientID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// MarkAllNotificationsRead marks the whole feed as read.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, recipientID, err := recipientFromScope(scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), recipientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}
