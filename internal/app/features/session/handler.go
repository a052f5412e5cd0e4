// internal/app/features/session/handler.go
package session

import (
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler exchanges identity-provider tokens for cookie sessions so that
// browser clients (and EventSource streams, which cannot send headers) stay
// signed in.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

// ServeCurrent returns the signed-in caller. Cookie clients read the CSRF
// token for later writes from here.
// GET /session
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Response{Error: "Authentication required."})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CSRFToken: auth.CSRFToken(r),
	})
}

// HandleSignIn verifies the bearer token and stores its identity in the
// session cookie.
// POST /session
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	raw, ok := auth.BearerToken(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Response{Error: "A bearer token is required."})
		return
	}
	u, err := h.SessionMgr.ParseToken(raw)
	if err != nil {
		h.Log.Debug("session sign-in rejected", zap.Error(err))
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Response{Error: "Invalid or expired token."})
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, zap.String("user_id", u.ID))
		return
	}
	h.Log.Info("session started", zap.String("user_id", u.ID))
	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

// HandleSignOut expires the session cookie. It succeeds for anonymous
// callers too.
// DELETE /session
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("clear session failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
