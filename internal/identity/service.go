package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUsername    = errors.New("username must be at least 3 characters of letters, digits or underscores")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

// dummyHash is a well-formed bcrypt digest compared against when the
// username does not resolve to a stored user.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// Options tune the service; zero values fall back to defaults.
type Options struct {
	SessionTTL   time.Duration
	BcryptCost   int
	CookieSecure bool
}

type Service struct {
	store  *Store
	logger *log.Logger

	cookieName   string
	sessionTTL   time.Duration
	bcryptCost   int
	cookieSecure bool
}

func NewService(store *Store, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = 12
	}
	return &Service{
		store:        store,
		logger:       logger,
		cookieName:   "taskdesk_session",
		sessionTTL:   opts.SessionTTL,
		bcryptCost:   opts.BcryptCost,
		cookieSecure: opts.CookieSecure,
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	if len(username) < minUsernameLen {
		return ErrInvalidUsername
	}
	for _, ch := range username {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
		case ch == '_':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// Register creates an account and logs it in, returning the session token
// for the cookie.
func (s *Service) Register(ctx context.Context, username, email, password string, now time.Time) (User, string, time.Time, error) {
	username = normalizeUsername(username)
	email = normalizeEmail(email)

	if err := validateUsername(username); err != nil {
		return User{}, "", time.Time{}, err
	}
	if err := validateEmail(email); err != nil {
		return User{}, "", time.Time{}, err
	}
	if len(password) < minPasswordLen {
		return User{}, "", time.Time{}, ErrWeakPassword
	}

	if _, ok, err := s.store.UserByUsername(ctx, username); err != nil {
		return User{}, "", time.Time{}, err
	} else if ok {
		return User{}, "", time.Time{}, ErrUsernameTaken
	}
	if _, ok, err := s.store.UserByEmail(ctx, email); err != nil {
		return User{}, "", time.Time{}, err
	} else if ok {
		return User{}, "", time.Time{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, "", time.Time{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return User{}, "", time.Time{}, err
	}

	token, exp, err := s.startSession(ctx, u.ID, now)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string, now time.Time) (User, string, time.Time, error) {
	username = normalizeUsername(username)

	u, ok, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	if !ok {
		// Burn comparable time so missing users aren't distinguishable by
		// response latency.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.startSession(ctx, u.ID, now)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	return u, token, exp, nil
}

func (s *Service) startSession(ctx context.Context, userID string, now time.Time) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(s.sessionTTL)
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: exp,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// AuthenticateRequest resolves the user behind the session cookie, if any.
func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (User, Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return User{}, Session{}, false
	}

	ctx := r.Context()
	sess, ok, err := s.store.SessionByTokenHash(ctx, hashToken(cookie.Value))
	if err != nil {
		s.logger.Printf("session lookup failed: %v", err)
		return User{}, Session{}, false
	}
	if !ok {
		return User{}, Session{}, false
	}
	if now.After(sess.ExpiresAt) {
		_ = s.store.DeleteSessionByID(ctx, sess.ID)
		return User{}, Session{}, false
	}

	u, ok, err := s.store.UserByID(ctx, sess.UserID)
	if err != nil {
		s.logger.Printf("session user lookup failed: %v", err)
		return User{}, Session{}, false
	}
	if !ok {
		_ = s.store.DeleteSessionByID(ctx, sess.ID)
		return User{}, Session{}, false
	}

	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		_ = s.store.TouchSession(ctx, sess.ID, now)
		sess.LastSeen = now
	}

	return u, sess, true
}

// RevokeSessionForRequest logs out whatever session the request carries.
func (s *Service) RevokeSessionForRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	_ = s.store.DeleteSessionByTokenHash(r.Context(), hashToken(cookie.Value))
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAPI rejects unauthenticated requests with a JSON 401 and otherwise
// resolves the user into the request context.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		ctx := contextWithSession(ContextWithUser(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
