package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Identity                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated caller. ID is the identity provider's
// subject and owns every material, event and tag.
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// Claims are the identity-provider token claims we read. The subject
// (RegisteredClaims.Subject) is the user ID.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned by ParseToken for any unusable token.
var ErrInvalidToken = errors.New("invalid token")

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user placed in the request context by
// LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
)

// Config configures a SessionManager.
type Config struct {
	SessionKey  string        // cookie signing key; random per process when blank
	SessionName string        // cookie name
	Domain      string        // cookie domain; blank for host-only
	MaxAge      time.Duration // cookie lifetime
	Secure      bool          // Secure + SameSite=None when true, Lax otherwise

	TokenSecret string // HS256 secret shared with the identity provider
	TokenIssuer string // expected "iss"; not checked when blank

	CSRFKey        string   // CSRF cookie key; random per process when blank
	TrustedOrigins []string // extra hosts allowed to send cookie-authenticated writes
}

// CSRFHeader carries the CSRF token on cookie-authenticated writes. Safe
// requests that carry a session cookie receive a fresh token in it.
const CSRFHeader = "X-CSRF-Token"

// SessionManager authenticates requests from either a bearer token issued by
// the identity provider or a session cookie established with SignIn.
type SessionManager struct {
	store       *sessions.CookieStore
	name        string
	tokenSecret []byte
	issuer      string
	csrf        func(http.Handler) http.Handler
	plaintext   bool
	log         *zap.Logger
}

// NewSessionManager builds the cookie store and token verifier.
func NewSessionManager(cfg Config, logger *zap.Logger) (*SessionManager, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "studypal-session"
	}

	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate session key: random source unavailable")
		}
		logger.Warn("session key not configured; using a random key (sessions will not survive restarts)")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	csrfKey := []byte(cfg.CSRFKey)
	if len(csrfKey) != 32 {
		if len(csrfKey) > 0 {
			logger.Warn("csrf key must be exactly 32 bytes; using a random key", zap.Int("length", len(csrfKey)))
		}
		csrfKey = securecookie.GenerateRandomKey(32)
		if csrfKey == nil {
			return nil, fmt.Errorf("generate csrf key: random source unavailable")
		}
	}

	logger.Info("session manager initialized",
		zap.String("cookie", cfg.SessionName),
		zap.Bool("secure", cfg.Secure),
		zap.String("domain", cfg.Domain))

	sm := &SessionManager{
		store:       store,
		name:        cfg.SessionName,
		tokenSecret: []byte(cfg.TokenSecret),
		issuer:      cfg.TokenIssuer,
		plaintext:   !cfg.Secure,
		log:         logger,
	}
	sm.csrf = csrf.Protect(csrfKey,
		csrf.CookieName(cfg.SessionName+"-csrf"),
		csrf.Path("/"),
		csrf.Domain(cfg.Domain),
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(sm.csrfFailed)),
	)
	return sm, nil
}

// ParseToken verifies an HS256 identity token and returns its user.
// The token must carry a subject and must not be expired.
func (sm *SessionManager) ParseToken(raw string) (*SessionUser, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if sm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(sm.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return sm.tokenSecret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &SessionUser{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// IssueToken signs a token for u. The identity provider normally does this;
// it is used by local tooling and tests.
func (sm *SessionManager) IssueToken(u SessionUser, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    sm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.tokenSecret)
}

// LoadSessionUser puts the caller into the request context. A bearer token
// wins over the session cookie. An invalid bearer token leaves the request
// anonymous rather than falling back to the cookie.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := BearerToken(r); ok {
			u, err := sm.ParseToken(raw)
			if err != nil {
				sm.log.Debug("rejected bearer token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, withUser(r, u))
			return
		}

		sess, err := sm.store.Get(r, sm.name)
		if err == nil {
			if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
				r = withUser(r, &SessionUser{
					ID:    getString(sess, userIDKey),
					Name:  getString(sess, userName),
					Email: getString(sess, userEmail),
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ProtectCookies applies CSRF checks to requests that carry the session
// cookie. Bearer-token requests and requests without a session cookie have no
// ambient credentials to forge and pass through unchecked. Safe requests with
// a session cookie get a token in the CSRFHeader response header; writes must
// echo it back.
func (sm *SessionManager) ProtectCookies(next http.Handler) http.Handler {
	issue := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := csrf.Token(r); tok != "" {
			w.Header().Set(CSRFHeader, tok)
		}
		next.ServeHTTP(w, r)
	})
	protected := sm.csrf(issue)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := BearerToken(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := r.Cookie(sm.name); err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if sm.plaintext {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protected.ServeHTTP(w, r)
	})
}

// CSRFToken returns the token ProtectCookies issued for r, or "".
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

func (sm *SessionManager) csrfFailed(w http.ResponseWriter, r *http.Request) {
	sm.log.Info("csrf check failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("origin", r.Header.Get("Origin")),
		zap.NamedError("reason", csrf.FailureReason(r)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"Request blocked: missing or invalid CSRF token."}`))
}

// RequireSignedIn rejects anonymous callers with 401 and a JSON error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("WWW-Authenticate", `Bearer realm="studypal"`)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Authentication required."}`))
	})
}

// SignIn stores u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
