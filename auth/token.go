package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/errs"
)

// fallbackSecret keeps the codec functional when SESSION_SECRET is unset.
// Tokens signed with it are worthless outside local development, hence the
// loud warning in NewCodec.
const fallbackSecret = "portfolio-dev-secret"

// DefaultTTL is how long issued session tokens stay valid. Observed
// deployments ranged from 4 hours to 30 days; 7 days is the policy here,
// overridable via SESSION_TTL_HOURS.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the payload carried by a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a uuid, or uuid.Nil if it does not parse.
func (c *Claims) UserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Codec signs and verifies session tokens. Stateless: nothing is persisted
// server-side, a token is valid until its expiry.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET is not set, falling back to the built-in development secret; session tokens are forgeable")
		secret = fallbackSecret
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity, expiring after the codec TTL.
func (c *Codec) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token, mapping library failures onto the
// closed credential-error set so the middleware can react per reason.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errs.NewTokenExpiredError()
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errs.NewTokenSignatureError()
		default:
			return nil, errs.NewTokenInvalidError(err)
		}
	}

	if !token.Valid {
		return nil, errs.NewTokenInvalidError(nil)
	}
	if claims.UserID() == uuid.Nil {
		return nil, errs.NewTokenInvalidError(errors.New("subject is not a user id"))
	}
	return claims, nil
}
