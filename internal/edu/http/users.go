package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/slogx"
)

// UsersHandler is the admin-only account CRUD.
type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,oneof=student teacher admin analyst"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// HandleList handles GET /v1/users
//
//	@Summary		List accounts
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		edusdk.UserProfile		"All accounts"
//	@Failure		403	{object}	edusdk.ErrorResponse	"Requires the admin role"
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	profiles := make([]edusdk.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, toProfile(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profiles)
}

// HandleCreate handles POST /v1/users
//
//	@Summary		Create an account
//	@Description	Creates an account with any role, including admin.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest		true	"New account"
//	@Success		201		{object}	edusdk.UserProfile		"Created account"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Email already registered"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeServiceError(w, r, service.ErrRoleNotPermitted)
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req.Email, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProfile(user))
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary		Fetch an account
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"User ID"
//	@Success		200	{object}	edusdk.UserProfile		"Account"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown user"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}

// HandleSetActive handles PATCH /v1/users/{id}/active
//
//	@Summary		Enable or disable an account
//	@Description	Deactivation revokes every refresh token the account holds, so it cannot refresh its way back in.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	string				true	"User ID"
//	@Param			request	body	setActiveRequest	true	"Desired state"
//	@Success		204		"State applied"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown user"
//	@Router			/v1/users/{id}/active [patch].
func (h *UsersHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	var req setActiveRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.UserService.SetActive(ctx, userID, *req.IsActive); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("account state changed",
		"user_id", userID,
		"is_active", *req.IsActive,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /v1/users/{id}
//
//	@Summary		Delete an account
//	@Description	Removes the account along with its tokens and notifications.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown user"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	if err := h.UserService.DeleteUser(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("account deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
