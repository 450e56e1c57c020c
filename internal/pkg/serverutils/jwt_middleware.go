// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"strings"
	"time"

	"aficionado-be/internal/identity"
	"aficionado-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalsUsername = "username"
	LocalsEmail    = "email"

	AccessTokenCookie = "access_token"
)

// JwtMiddleware rejects requests without a verified identity and stores the
// resolved username in ctx.Locals. Identities that map onto a reserved storage
// prefix are rejected like an invalid token.
func JwtMiddleware(secret string, reserved ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := ParseIdentity(ctx, secret, reserved...)
		if err != nil {
			appErr := apperror.From(err)
			return ctx.Status(appErr.Status).JSON(AppErrorResponse(appErr))
		}

		ctx.Locals(LocalsUsername, id.Username)
		ctx.Locals(LocalsEmail, id.Email)
		return ctx.Next()
	}
}

// ParseIdentity reads the bearer token (header first, then cookie) and resolves it.
func ParseIdentity(ctx *fiber.Ctx, secret string, reserved ...string) (identity.Identity, error) {
	tokenStr := ""
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		tokenStr = authHeader[7:]
	} else {
		tokenStr = ctx.Cookies(AccessTokenCookie)
	}
	if tokenStr == "" {
		return identity.Identity{}, apperror.NewUnauthorized("missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return identity.Identity{}, apperror.NewUnauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, apperror.NewUnauthorized("invalid claims")
	}
	if verified, present := claims["email_verified"].(bool); present && !verified {
		return identity.Identity{}, apperror.NewUnauthorized("email is not verified")
	}

	email, _ := claims["email"].(string)
	return identity.Resolve(email, reserved...)
}

// IssueToken signs an access token for a verified email address.
func IssueToken(secret, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"email":          email,
		"email_verified": true,
		"exp":            time.Now().Add(ttl).Unix(),
		"iat":            time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Username returns the identity stored by JwtMiddleware.
func Username(ctx *fiber.Ctx) string {
	username, _ := ctx.Locals(LocalsUsername).(string)
	return username
}
