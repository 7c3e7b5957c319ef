package middleware

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	claimsKey = "claims"

	UserIDKey = "user_id"
	RoleKey   = "role"

	RoleAdmin = "admin"
)

type BearerMiddleware struct {
	required echo.MiddlewareFunc
	optional echo.MiddlewareFunc
}

func NewBearerMiddleware(secret []byte) *BearerMiddleware {
	parse := func(c echo.Context, auth string) (interface{}, error) {
		return tokens.AccessClaimsFromToken(auth, secret)
	}

	return &BearerMiddleware{
		required: echojwt.WithConfig(echojwt.Config{
			ContextKey:     claimsKey,
			ParseTokenFunc: parse,
			ErrorHandler: func(c echo.Context, err error) error {
				if !hasBearer(c) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			},
		}),
		optional: echojwt.WithConfig(echojwt.Config{
			ContextKey:             claimsKey,
			ParseTokenFunc:         parse,
			ContinueOnIgnoredError: true,
			ErrorHandler: func(c echo.Context, err error) error {
				if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
					return nil
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			},
		}),
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.required(withClaims(next, nil))
}

// OptionalAuth lets anonymous requests through but still rejects a bad token.
func (m *BearerMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.optional(withClaims(next, nil))
}

func (m *BearerMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.required(withClaims(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
		}
		return nil
	}))
}

func withClaims(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
		if !ok || claims == nil {
			return next(c)
		}
		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func hasBearer(c echo.Context) bool {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	return len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ")
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(UserIDKey, claims.Subject)
	c.Set(RoleKey, claims.Role)
}

// UserFromContext returns the authenticated subject and role, if any.
func UserFromContext(c echo.Context) (userID, role string, ok bool) {
	userID, _ = c.Get(UserIDKey).(string)
	role, _ = c.Get(RoleKey).(string)
	return userID, role, userID != ""
}
