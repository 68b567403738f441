package http

import (
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
)

type SignupHandler struct {
	Signup *service.SignupOrchestrator
}

// ServeHTTP godoc
//
//	@Summary		Sign up with an invite code
//	@Description	Creates an account from an invite code. The invite is consumed exactly once; if any step after
//	@Description	identity creation fails, the identity is deleted before the error is returned and the invite stays spent.
//	@Description	Invites from super_admin creators return a session; everyone else must confirm their email and sign in.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupsdk.SignupRequest		true	"Signup request"
//	@Success		201		{object}	signupsdk.SignupResponse	"user_id, session (optional), message"
//	@Failure		400		{object}	signupsdk.ErrorResponse		"INVALID_INVITE or VALIDATION_ERROR"
//	@Failure		409		{object}	signupsdk.ErrorResponse		"CONFLICT: invite consumed concurrently, or email taken"
//	@Failure		502		{object}	signupsdk.ErrorResponse		"AUTH_CREATE_FAILED"
//	@Failure		500		{object}	signupsdk.ErrorResponse		"INTERNAL_ERROR"
//	@Router			/v1/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	res, err := h.Signup.Signup(r.Context(), service.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		AccountType: domain.AccountType(req.AccountType),
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}

	out := signupsdk.SignupResponse{
		Created:        res.Created,
		UserID:         res.UserID,
		TokenExchanged: res.TokenExchanged,
		Message:        res.Message,
		Subscription: signupsdk.SubscriptionGrant{
			Assigned: res.Subscription.Assigned,
			Plan:     res.Subscription.Plan,
		},
		SagaID: res.SagaID,
	}
	if res.Session != nil {
		tok := toTokenResponse(*res.Session)
		out.Session = &tok
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func toTokenResponse(s domain.Session) signupsdk.TokenResponse {
	return signupsdk.TokenResponse{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
	}
}
