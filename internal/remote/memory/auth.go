package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spendtracker/internal/remote"
)

// Auth is a self-contained stand-in for the hosted auth service: bcrypt
// password storage, HS256 session tokens, in-memory revocation and
// password-reset tokens.
type Auth struct {
	mu      sync.Mutex
	secret  []byte
	ttl     time.Duration
	users   map[string]authUser // by lowercased email
	revoked map[string]struct{} // token ids
	resets  map[string]string   // reset token -> email
}

type authUser struct {
	id           string
	email        string
	passwordHash []byte
}

func NewAuth(secret string, sessionTTL time.Duration) *Auth {
	return &Auth{
		secret:  []byte(secret),
		ttl:     sessionTTL,
		users:   map[string]authUser{},
		revoked: map[string]struct{}{},
		resets:  map[string]string{},
	}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *Auth) SignUp(_ context.Context, email, password string) (remote.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return remote.Session{}, errors.New("invalid email")
	}
	if len(password) < 8 {
		return remote.Session{}, errors.New("password too short (min 8 characters)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return remote.Session{}, err
	}

	a.mu.Lock()
	if _, exists := a.users[email]; exists {
		a.mu.Unlock()
		return remote.Session{}, remote.ErrConflict
	}
	u := authUser{id: uuid.NewString(), email: email, passwordHash: hash}
	a.users[email] = u
	a.mu.Unlock()

	return a.issue(u)
}

func (a *Auth) SignIn(_ context.Context, email, password string) (remote.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a.mu.Lock()
	u, ok := a.users[email]
	a.mu.Unlock()
	if !ok {
		return remote.Session{}, remote.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return remote.Session{}, remote.ErrInvalidCredentials
	}
	return a.issue(u)
}

func (a *Auth) SignOut(_ context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return remote.ErrNoSession
	}
	a.mu.Lock()
	a.revoked[claims.ID] = struct{}{}
	a.mu.Unlock()
	return nil
}

func (a *Auth) SessionFromToken(_ context.Context, token string) (remote.Session, error) {
	claims, err := a.parse(token)
	if err != nil {
		return remote.Session{}, remote.ErrNoSession
	}
	a.mu.Lock()
	_, revoked := a.revoked[claims.ID]
	a.mu.Unlock()
	if revoked {
		return remote.Session{}, remote.ErrNoSession
	}
	return remote.Session{UserID: claims.Subject, Email: claims.Email, Token: token}, nil
}

func (a *Auth) RequestPasswordReset(_ context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[email]; !ok {
		// Do not reveal whether the account exists.
		return "", nil
	}
	token := uuid.NewString()
	a.resets[token] = email
	return token, nil
}

func (a *Auth) ConfirmPasswordReset(_ context.Context, resetToken, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password too short (min 8 characters)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	email, ok := a.resets[resetToken]
	if !ok {
		return errors.New("invalid or expired reset token")
	}
	delete(a.resets, resetToken)
	u := a.users[email]
	u.passwordHash = hash
	a.users[email] = u
	return nil
}

func (a *Auth) issue(u authUser) (remote.Session, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: u.email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return remote.Session{}, err
	}
	return remote.Session{UserID: u.id, Email: u.email, Token: token}, nil
}

func (a *Auth) parse(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, remote.ErrNoSession
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return nil, remote.ErrNoSession
	}
	return claims, nil
}
