package handler

import (
	"errors"
	"net/http"

	"github.com/mindfixhq/mindfix/internal/auth"
	"github.com/mindfixhq/mindfix/internal/entitlement"
	"github.com/mindfixhq/mindfix/internal/user"
)

// OnboardingRoute is where fresh accounts land after sign-up.
const OnboardingRoute = "/quiz"

type signUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
	Reason   string `json:"reason,omitempty"`
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cred, err := h.Auth.Register(r.Context(), auth.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AcceptTerms:     req.AcceptTerms,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordMismatch),
			errors.Is(err, auth.ErrTermsNotAccepted),
			errors.Is(err, auth.ErrEmailRequired):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.ErrorContext(r.Context(), "sign up failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	// The session replaces the old client-side email cache; losing it only
	// costs the user a login, so it must not fail the sign-up.
	if _, err := h.Sessions.Start(r.Context(), w, cred.Email); err != nil {
		h.Log.WarnContext(r.Context(), "session start after sign-up failed", "email", cred.Email, "error", err)
	}

	respondJSON(w, http.StatusCreated, redirectResponse{Redirect: OnboardingRoute})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cred, err := h.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.Log.ErrorContext(r.Context(), "login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	if cred.Email == "" {
		// Authenticated but no usable profile; same terminal as the original's
		// unexpected-failure branch.
		respondJSON(w, http.StatusOK, redirectResponse{
			Redirect: entitlement.RoutePlans + "?reason=" + entitlement.ReasonError,
			Reason:   entitlement.ReasonError,
		})
		return
	}

	if _, err := h.Sessions.Start(r.Context(), w, cred.Email); err != nil {
		h.Log.WarnContext(r.Context(), "session start after login failed", "email", cred.Email, "error", err)
	}

	// Best-effort sync: make sure the record store has a row and a fresh
	// updated_at. A failed sync never blocks the login.
	if h.Sync != nil {
		if res := h.Sync.SaveUser(r.Context(), cred.Email, user.Updates{}); res.Failed() {
			h.Log.WarnContext(r.Context(), "post-login user sync failed", "email", cred.Email)
		}
	}

	decision := h.Resolver.Resolve(r.Context(), cred.Email)
	respondJSON(w, http.StatusOK, redirectResponse{
		Redirect: decision.Redirect,
		Reason:   decision.Reason,
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), w, r); err != nil {
		h.Log.WarnContext(r.Context(), "session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusOK, redirectResponse{Redirect: "/"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrEmailRequired) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.ErrorContext(r.Context(), "forgot password failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if _, err := h.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrInvalidResetToken):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.ErrorContext(r.Context(), "reset password failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	respondJSON(w, http.StatusOK, redirectResponse{Redirect: "/login"})
}
