package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind tells access and refresh credentials apart.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Cookie names the credentials travel in.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// Error variables
var (
	ErrExpiredCredential          = errors.New("credential has expired")
	ErrInvalidSignature           = errors.New("credential signature is invalid")
	ErrMalformedCredential        = errors.New("credential is malformed")
	ErrTokenNotFound              = errors.New("token not found in request")
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header format")
)

// Claims is the signed claim set of a credential. The subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Kind   Kind      `json:"kind"`
	UserID uuid.UUID `json:"-"`
}

// JWT issues and verifies credentials of one kind with one secret.
type JWT struct {
	SecretKey  string        // Secret key for signing tokens
	Exp        time.Duration // Token expiration duration
	Kind       Kind          // Kind stamped into issued tokens
	CookieName string        // Cookie checked before the Authorization header

	now   func() time.Time
	newID func() string
}

// Option configures a JWT.
type Option func(*JWT)

// WithSecretKey sets the signing secret.
func WithSecretKey(secret string) Option {
	return func(j *JWT) { j.SecretKey = secret }
}

// WithExpiration sets the token lifetime.
func WithExpiration(exp time.Duration) Option {
	return func(j *JWT) { j.Exp = exp }
}

// WithKind sets the credential kind.
func WithKind(kind Kind) Option {
	return func(j *JWT) { j.Kind = kind }
}

// WithCookieName overrides the cookie GetTokenFromRequest looks at.
func WithCookieName(name string) Option {
	return func(j *JWT) { j.CookieName = name }
}

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) { j.now = now }
}

// WithIDGenerator replaces the generator of the jti claim.
func WithIDGenerator(newID func() string) Option {
	return func(j *JWT) { j.newID = newID }
}

// New creates a new JWT instance. Defaults to a 15 minute access credential.
func New(opts ...Option) *JWT {
	j := &JWT{
		Exp:   15 * time.Minute,
		Kind:  KindAccess,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.CookieName == "" {
		j.CookieName = AccessCookieName
		if j.Kind == KindRefresh {
			j.CookieName = RefreshCookieName
		}
	}
	return j
}

// Issue creates a signed token for userID that expires after Exp.
func (j *JWT) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Exp)),
			ID:        j.newID(),
		},
		Kind: j.Kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.SecretKey))
}

// Verify parses tokenString and returns its claims.
func (j *JWT) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(j.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpiredCredential, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrMalformedCredential)
	}
	claims.UserID = userID

	return claims, nil
}

// GetTokenFromRequest extracts the token string from the credential cookie or,
// when the cookie is absent, from the Authorization header.
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	if c, err := r.Cookie(j.CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrTokenNotFound
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidAuthorizationHeader
	}

	return parts[1], nil
}
