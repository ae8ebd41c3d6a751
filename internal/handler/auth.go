package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/notehub/notehub-go/internal/middleware"
	"github.com/notehub/notehub-go/internal/model"
	"github.com/notehub/notehub-go/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service     *service.AuthService
	oauth       *service.GoogleOAuth
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, oauth *service.GoogleOAuth, frontendURL string) *AuthHandler {
	return &AuthHandler{service: svc, oauth: oauth, frontendURL: frontendURL}
}

// HandleSignup handles POST /auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		switch {
		case isSignupValidationError(err), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			slog.Error("signup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleVerifyOTP handles POST /auth/verify-otp requests.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAlreadyVerified),
			errors.Is(err, service.ErrNoPendingOTP),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrInvalidOTP):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			slog.Error("otp verification failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, service.ErrNotVerified):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		default:
			slog.Error("login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleResendOTP handles POST /auth/resend-otp requests.
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req model.ResendOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.service.ResendOTP(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAlreadyVerified):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrOTPDeliveryFailed):
			slog.Error("otp resend delivery failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse(service.ErrOTPDeliveryFailed.Error()))
		default:
			slog.Error("otp resend failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
}

// HandleGoogleLogin handles GET /auth/google requests by redirecting to the
// Google consent page. The anti-forgery state rides in a short-lived cookie.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.oauth.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("google sign-in is not configured"))
		return
	}

	state, err := randomState()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// HandleGoogleCallback handles GET /auth/google/callback requests. The
// browser is mid-navigation here, so both outcomes are communicated as
// frontend redirects rather than JSON bodies.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.redirectAuthError(w, r)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectAuthError(w, r)
		return
	}

	profile, err := h.oauth.FetchProfile(r.Context(), code)
	if err != nil {
		slog.Error("google profile fetch failed", "error", err)
		h.redirectAuthError(w, r)
		return
	}

	resp, err := h.service.OAuthLogin(r.Context(), profile)
	if err != nil {
		slog.Error("oauth login failed", "error", err)
		h.redirectAuthError(w, r)
		return
	}

	query := url.Values{"token": {resp.Token}}
	http.Redirect(w, r, h.frontendURL+"/auth/success?"+query.Encode(), http.StatusFound)
}

// HandleProfile handles GET /auth/profile requests.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		slog.Error("profile fetch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.UserResponse{"user": resp})
}

func (h *AuthHandler) redirectAuthError(w http.ResponseWriter, r *http.Request) {
	query := url.Values{"message": {"Authentication failed"}}
	http.Redirect(w, r, h.frontendURL+"/auth/error?"+query.Encode(), http.StatusFound)
}

func isSignupValidationError(err error) bool {
	return errors.Is(err, service.ErrEmailInvalid) ||
		errors.Is(err, service.ErrPasswordTooShort) ||
		errors.Is(err, service.ErrFirstNameRequired) ||
		errors.Is(err, service.ErrLastNameRequired)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
