package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

const (
	msgRegistered       = "User registered successfully"
	msgEmailTaken       = "Email already registered"
	msgLoggedIn         = "Logged in Successfully"
	msgBadCredentials   = "Invalid Credentials"
	msgSignedOut        = "User signed out successfully"
	msgMissingToken     = "Unauthorized - Missing token"
	msgInvalidToken     = "Unauthorized - Invalid token"
	msgBadBody          = "Invalid request body"
	msgRegisterFailed   = "There was a problem registering the user, please try again."
	msgLoginFailed      = "There was a problem logging in, please try again."
	msgSignOutFailed    = "There was a problem signing out the user, please try again."
	msgListFailed       = "There was a problem in retrieving the users list, please try again."
	maxRequestBodyBytes = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
	Result  bool   `json:"result"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type listResponse struct {
	Users  []models.ActivityRow `json:"users"`
	Result bool                 `json:"result"`
}

func (a *API) SignUp(w http.ResponseWriter, r *http.Request) {
	var in validation.Registration
	if !a.decode(w, r, &in) {
		return
	}

	_, err := a.service.Register(r.Context(), in)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, common.ErrorAlreadyExists):
			writeError(w, http.StatusBadRequest, msgEmailTaken)
		default:
			a.logger.Error(r.Context(), "register failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgRegisterFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgRegistered, Result: true})
}

func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	var in validation.Login
	if !a.decode(w, r, &in) {
		return
	}

	token, err := a.service.Login(r.Context(), in, clientIP(r))
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			a.metrics.ObserveLogin("invalid")
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, common.ErrorUnauthorized):
			a.metrics.ObserveLogin("unauthorized")
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
		default:
			a.metrics.ObserveLogin("error")
			a.logger.Error(r.Context(), "login failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgLoginFailed)
		}
		return
	}

	a.metrics.ObserveLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{Message: msgLoggedIn, Token: token})
}

func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	err := a.service.Logout(r.Context(), r.Header.Get(common.AccessTokenHeaderName))
	if err != nil {
		a.writeAuthError(w, r, err, msgSignOutFailed)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgSignedOut, Result: true})
}

func (a *API) List(w http.ResponseWriter, r *http.Request) {
	if a.opts.ProtectList {
		if err := a.service.Authorize(r.Context(), r.Header.Get(common.AccessTokenHeaderName)); err != nil {
			a.writeAuthError(w, r, err, msgListFailed)
			return
		}
	}

	rows, err := a.service.ListActivity(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), "list failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgListFailed)
		return
	}
	if rows == nil {
		rows = []models.ActivityRow{}
	}

	writeJSON(w, http.StatusOK, listResponse{Users: rows, Result: true})
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Ping(r.Context()); err != nil {
		a.logger.Warn(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// --- helpers ---

func (a *API) writeAuthError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, msgMissingToken)
	default:
		a.logger.Error(r.Context(), "token check failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(v); err != nil {
		a.logger.Debug(r.Context(), "bad request body", "error", err)
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	return true
}

// clientIP is the host part of RemoteAddr: the socket peer, or the proxy
// supplied address when middleware.RealIP is enabled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, messageResponse{Message: msg, Result: false})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
