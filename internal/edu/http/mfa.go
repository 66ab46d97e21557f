package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/slogx"
)

// MFAHandler manages TOTP enrollment for the authenticated user. The
// login-time challenge exchange lives on AuthHandler.
type MFAHandler struct {
	MFAService *service.MFAService
}

type mfaCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// HandleEnroll handles POST /v1/auth/mfa/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret and provisioning URI for the caller. MFA is not active until a code is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	edusdk.MFAEnrollment	"Secret and otpauth URI"
//	@Failure		409	{object}	edusdk.ErrorResponse	"MFA already enabled"
//	@Router			/v1/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.StartEnrollment(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, edusdk.MFAEnrollment{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.OTPAuthURL,
	})
}

// HandleVerify handles POST /v1/auth/mfa/verify
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Activates MFA once the caller's authenticator produces a valid code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	mfaCodeRequest	true	"TOTP code"
//	@Success		204		"MFA enabled"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Code rejected"
//	@Router			/v1/auth/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req mfaCodeRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.MFAService.ConfirmEnrollment(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("MFA enabled", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /v1/auth/mfa
//
//	@Summary		Disable TOTP
//	@Description	Turns MFA off. Requires a currently-valid code so a hijacked session can't strip the second factor.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	mfaCodeRequest	true	"TOTP code"
//	@Success		204		"MFA disabled"
//	@Failure		401		{object}	edusdk.ErrorResponse	"Code rejected"
//	@Router			/v1/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req mfaCodeRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if err := h.MFAService.Disable(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("MFA disabled", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
