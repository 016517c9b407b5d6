package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"lms-service/internal/apperr"
	"lms-service/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "userRole"
)

// Claims are the JWT claims issued by the auth module.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RequireAuth validates the Bearer token and stores the principal in the
// request context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, apperr.WithCode(http.StatusUnauthorized, "AUTH_REQUIRED", "Please login to continue"))
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			response.AbortError(c, apperr.WithCode(http.StatusUnauthorized, "TOKEN_INVALID", "Session expired or invalid, please login again"))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// principal holds one of the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.AbortError(c, apperr.New(http.StatusForbidden, "You do not have permission to access this resource"))
	}
}

// UserID returns the authenticated principal's id from the request context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// IssueToken signs a JWT for the given principal. Used by tests and tooling;
// token issuance in production belongs to the auth module.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
