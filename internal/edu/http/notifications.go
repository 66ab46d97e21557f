package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
)

// NotificationsHandler serves each user's in-app notices.
type NotificationsHandler struct {
	NotificationService *service.NotificationService
}

type sendNotificationRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"required,max=2000"`
}

// HandleList handles GET /v1/notifications
//
//	@Summary		List own notifications
//	@Description	Returns the caller's notifications, newest first. Pass ?unread=true to filter.
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Produce		json
//	@Param			unread	query	bool	false	"Only unread"
//	@Success		200		{array}	edusdk.Notification	"Notifications"
//	@Router			/v1/notifications [get].
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.NotificationService.List(ctx, userID, unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Notification, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotification(n))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleSend handles POST /v1/notifications
//
//	@Summary		Send a notification
//	@Description	Delivers an in-app notice to one user.
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sendNotificationRequest	true	"Notice"
//	@Success		201		{object}	edusdk.Notification		"Delivered notice"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown user"
//	@Router			/v1/notifications [post].
func (h *NotificationsHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	n, err := h.NotificationService.Notify(r.Context(), req.UserID, req.Title, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toNotification(n))
}

// HandleMarkRead handles POST /v1/notifications/{id}/read
//
//	@Summary		Mark one notification read
//	@Description	Marking an already-read notification again is a no-op. Callers can only touch their own notifications.
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Notification ID"
//	@Success		204	"Marked read"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown notification"
//	@Router			/v1/notifications/{id}/read [post].
func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	if err := h.NotificationService.MarkRead(ctx, userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkAllRead handles POST /v1/notifications/read-all
//
//	@Summary		Mark every notification read
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Success		204	"All marked read"
//	@Router			/v1/notifications/read-all [post].
func (h *NotificationsHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	if err := h.NotificationService.MarkAllRead(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
