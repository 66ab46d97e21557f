package http

import (
	"net/http"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/slogx"
)

// AuthHandler handles the session lifecycle endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type mfaExchangeRequest struct {
	MFAToken string `json:"mfa_token" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,oneof=student teacher analyst"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

func tokenResponse(pair *domain.TokenPair) edusdk.TokenResponse {
	return edusdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn / time.Second),
	}
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Password login
//	@Description	Verifies an email/password pair and issues an access + refresh token pair. Accounts with TOTP enrolled receive a 409 carrying an mfa_token to complete via /v1/auth/mfa.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest			true	"Credentials"
//	@Success		200		{object}	edusdk.TokenResponse	"Token pair"
//	@Failure		400		{object}	edusdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Invalid credentials"
//	@Failure		403		{object}	edusdk.ErrorResponse	"Account disabled"
//	@Failure		409		{object}	edusdk.ErrorResponse	"MFA required"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleMFAExchange handles POST /v1/auth/mfa
//
//	@Summary		Complete an MFA login
//	@Description	Exchanges the mfa_token from a 409 login response plus a TOTP code for a token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		mfaExchangeRequest		true	"Challenge token and TOTP code"
//	@Success		200		{object}	edusdk.TokenResponse	"Token pair"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Invalid or expired challenge, or bad code"
//	@Failure		429		{object}	edusdk.ErrorResponse	"Too many failed codes"
//	@Router			/v1/auth/mfa [post].
func (h *AuthHandler) HandleMFAExchange(w http.ResponseWriter, r *http.Request) {
	var req mfaExchangeRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	pair, err := h.AuthService.ExchangeMFACode(r.Context(), req.MFAToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Self-service registration
//	@Description	Creates an account with the student, teacher or analyst role. Admin accounts are created by an existing admin via /v1/users. Registration does not log the account in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest			true	"New account"
//	@Success		201		{object}	edusdk.UserProfile		"Created account"
//	@Failure		400		{object}	edusdk.ErrorResponse	"Validation failure"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeServiceError(w, r, service.ErrRoleNotPermitted)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProfile(user))
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Rotate a refresh token
//	@Description	Revokes the presented refresh token and issues a fresh pair under the same session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest			true	"Refresh token"
//	@Success		200		{object}	edusdk.TokenResponse	"New token pair"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Invalid, expired or revoked token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRevoke handles POST /v1/auth/revoke
//
//	@Summary		Revoke a refresh token
//	@Description	Invalidates a refresh token. Revoking an unknown token still returns 204 so logout stays idempotent.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	refreshRequest	true	"Refresh token"
//	@Success		204		"Revoked"
//	@Router			/v1/auth/revoke [post].
func (h *AuthHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.AuthService.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Current user profile
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	edusdk.UserProfile		"Profile"
//	@Failure		401	{object}	edusdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load user", "user_id", userID, "err", err)
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}

// HandleUpdateMe handles PATCH /v1/auth/me
//
//	@Summary		Update own profile
//	@Description	Applies a partial update to the caller's own profile; omitted fields are untouched.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	edusdk.UserProfile		"Updated profile"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Email already registered"
//	@Router			/v1/auth/me [patch].
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req profileUpdateRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	user, err := h.UserService.UpdateProfile(ctx, userID, domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}

// HandleChangePassword handles POST /v1/auth/password
//
//	@Summary		Change own password
//	@Description	Verifies the current password before setting a new one. Every refresh token is revoked, so other sessions must log in again.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	changePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Current password is wrong"
//	@Router			/v1/auth/password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req changePasswordRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.UserService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
