package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
)

const (
	tokenContextKey = "userToken"
	tokenAudience   = "Daftar"
)

// newJWTConfig returns the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT. The subject is the owner id.
type Claims struct {
	jwt.StandardClaims
}

func (c Claims) Owner() core.OwnerID {
	return core.OwnerID(c.Subject)
}

// GetOwnerClaims returns claims for owner expiring after ttl, or after Conf.Server.JWTExpirationDelta if ttl is 0.
func GetOwnerClaims(conf *core.Config, owner core.OwnerID, ttl time.Duration) *Claims {
	if ttl <= 0 {
		ttl = conf.Server.JWTExpirationDelta
	}
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   owner.String(),
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
}

// GenerateToken generates a signed JWT token string representing the owner Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// ownerMiddleware puts the token's owner on the request context, where core.OwnerResolver finds it.
func (s *Server) ownerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		owner := claims.Owner()
		if owner.Check() != nil {
			return errUnauthorized
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(core.WithOwner(req.Context(), owner)))
		return next(ctx)
	}
}

// resolveOwner returns the owner of the request.
func resolveOwner(ctx echo.Context, owners core.OwnerResolver) (core.OwnerID, error) {
	owner, err := owners.ResolveOwner(ctx.Request().Context())
	if err != nil {
		return "", errors.Wrap(err, "resolving owner")
	}
	return owner, nil
}
