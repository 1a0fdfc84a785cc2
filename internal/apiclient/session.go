package apiclient

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// SessionState is the authentication state of one dashboard session.
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the explicit auth context handed to a Client. It starts
// Authenticated when a token is present and moves to Anonymous exactly once,
// either on Logout or when the token's exp claim has passed.
type Session struct {
	mu          sync.Mutex
	token       string
	fingerprint string
	verified    bool
	state       SessionState
	claims      jwt.MapClaims
	onLogout    []func()
	now         func() time.Time
}

// NewSession builds a session from the raw bearer token (the authToken cookie).
// Opaque, non-JWT tokens are accepted; they simply carry no claims.
func NewSession(token string) *Session {
	s := &Session{now: time.Now}
	token = strings.TrimSpace(token)
	if token == "" {
		return s
	}
	s.token = token
	s.fingerprint = Fingerprint(token)
	s.state = Authenticated
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		s.claims = claims
	}
	return s
}

// NewVerifiedSession is NewSession for a token that must carry a valid HMAC
// signature under secret. Opaque tokens, alg=none and expired tokens fail.
// An empty token yields an Anonymous session without error.
func NewVerifiedSession(token string, secret []byte) (*Session, error) {
	s := NewSession(token)
	if s.state != Authenticated {
		return s, nil
	}
	if len(secret) == 0 {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(s.token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	s.claims = claims
	s.verified = true
	return s, nil
}

// Verified reports whether the token's signature was checked.
func (s *Session) Verified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified
}

// State reports the current state, expiring the session first if needed.
func (s *Session) State() SessionState {
	s.mu.Lock()
	hooks := s.expireLocked()
	state := s.state
	s.mu.Unlock()
	runHooks(hooks)
	return state
}

// Token returns the bearer token or an unauthorized error when anonymous.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	hooks := s.expireLocked()
	state, token := s.state, s.token
	s.mu.Unlock()
	runHooks(hooks)

	if state != Authenticated {
		return "", domain.APIError{
			Kind:    domain.KindUnauthorized,
			Status:  http.StatusUnauthorized,
			Message: domain.FallbackMessage(http.StatusUnauthorized),
		}
	}
	return token, nil
}

// Logout moves the session to Anonymous and notifies observers once.
func (s *Session) Logout() {
	s.mu.Lock()
	hooks := s.logoutLocked()
	s.mu.Unlock()
	runHooks(hooks)
}

// OnLogout registers f to run when the session becomes Anonymous. If it
// already is, f runs immediately.
func (s *Session) OnLogout(f func()) {
	s.mu.Lock()
	if s.state == Anonymous {
		s.mu.Unlock()
		f()
		return
	}
	s.onLogout = append(s.onLogout, f)
	s.mu.Unlock()
}

// Fingerprint identifies the session's token without revealing it. It
// survives logout so failed calls can still be attributed.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// Fingerprint is the hex BLAKE2b-128 digest of a bearer token.
func Fingerprint(token string) string {
	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err)
	}
	_, _ = h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Role returns the "role" claim, if any.
func (s *Session) Role() string {
	return s.stringClaim("role")
}

// Subject returns the "sub" claim, falling back to "user_id".
func (s *Session) Subject() string {
	if sub := s.stringClaim("sub"); sub != "" {
		return sub
	}
	return s.stringClaim("user_id")
}

// ExpiresAt returns the exp claim when present.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		return time.Time{}, false
	}
	exp, err := s.claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) stringClaim(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		return ""
	}
	switch v := s.claims[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (s *Session) expireLocked() []func() {
	if s.state != Authenticated || s.claims == nil {
		return nil
	}
	exp, err := s.claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if s.now().Before(exp.Time) {
		return nil
	}
	return s.logoutLocked()
}

func (s *Session) logoutLocked() []func() {
	if s.state == Anonymous {
		return nil
	}
	s.state = Anonymous
	s.token = ""
	hooks := s.onLogout
	s.onLogout = nil
	return hooks
}

func runHooks(hooks []func()) {
	for _, h := range hooks {
		h()
	}
}
