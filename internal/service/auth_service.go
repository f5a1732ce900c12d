package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medisched/internal/models"
	"medisched/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL = 24 * time.Hour
	dummyPassword     = "medisched-timing-guard"
)

var errInvalidToken = errors.New("invalid token")

// AuthService handles user auth logic
type AuthService struct {
	users      repository.Authorization
	sessions   repository.SessionRepo
	hasher     PasswordHasher
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.Authorization, sessions repository.SessionRepo, hasher PasswordHasher, cfg AuthConfig) *AuthService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		signingKey: []byte(cfg.SigningKey),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Register hashes password and creates a new user.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" {
		return models.User{}, fmt.Errorf("%w: username is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return models.User{}, fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	id, err := s.users.Create(ctx, username, hash)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return models.User{ID: id, Username: username, PasswordHash: hash}, nil
}

// Claims defines JWT claims. RegisteredClaims.ID carries the session id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Login validates credentials, stores a new session and returns its signed handle.
// Unknown users and wrong passwords fail with the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		s.burnHashCompare(password)
		return Session{}, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := s.now().UTC().Truncate(time.Second)
	// best effort; a failure here must not block the login
	_, _ = s.sessions.DeleteExpired(ctx, now)

	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Session{}, err
	}

	token, err := s.issueToken(sess)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: u.ID, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout revokes the session behind token. Tokens that do not verify are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// expiry is not checked so that stale cookies are still cleaned up
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// CurrentUser resolves token to its user. It returns (nil, nil) for anonymous
// callers: empty, malformed, expired or revoked tokens.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Expired(s.now()) || sess.UserID != claims.UserID {
		return nil, nil
	}
	return s.users.GetByID(ctx, sess.UserID)
}

func (s *AuthService) parseToken(accessToken string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithTimeFunc(s.now))
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// issueToken signs a JWT bound to the stored session.
func (s *AuthService) issueToken(sess models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		},
		UserID: sess.UserID,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// burnHashCompare spends one hash verification so that unknown usernames cost
// about as much as wrong passwords.
func (s *AuthService) burnHashCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}
