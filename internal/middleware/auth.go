package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"linkbuilding-service/internal/models"
)

// AuthMiddleware validates the Bearer token when a signing secret is
// configured. With an empty secret the token is parsed unverified so local
// development works without an identity provider in front.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				claims, err := parseToken(parts[1], jwtSecret)
				if err != nil {
					c.JSON(http.StatusUnauthorized, models.ErrorResponse{
						Success: false,
						Error: models.Error{
							Code:    "INVALID_TOKEN",
							Message: "Invalid or expired token",
						},
					})
					c.Abort()
					return
				}
				if sub, ok := claims["sub"].(string); ok {
					userID = sub
				}
				if email, ok := claims["email"].(string); ok {
					c.Set("email", email)
				}
				if roles, ok := claims["roles"].([]interface{}); ok {
					roleStrings := make([]string, 0, len(roles))
					for _, role := range roles {
						if r, ok := role.(string); ok {
							roleStrings = append(roleStrings, r)
						}
					}
					c.Set("roles", roleStrings)
				}
			}
		}

		// Header override for service-to-service calls behind the mesh
		if headerID := c.GetHeader("X-User-ID"); headerID != "" {
			userID = headerID
		}

		// Default to dev user if no user ID found (for local development)
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001"
		}

		c.Set("userId", userID)
		c.Set("user_id", userID)
		c.Next()
	}
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	if secret == "" {
		parser := jwt.NewParser()
		_, _, err := parser.ParseUnverified(tokenString, claims)
		if err != nil {
			return nil, err
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// RequireRole blocks requests whose token carries none of the given roles.
// Requests without any roles claim pass through; role assignment is optional
// for single-operator tenants.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rolesVal, exists := c.Get("roles")
		if !exists {
			c.Next()
			return
		}
		roles, ok := rolesVal.([]string)
		if !ok || len(roles) == 0 {
			c.Next()
			return
		}
		for _, have := range roles {
			for _, want := range allowed {
				if strings.EqualFold(have, want) {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FORBIDDEN",
				Message: "Insufficient permissions for this operation",
			},
		})
		c.Abort()
	}
}

// GetUserID retrieves the acting user ID from gin context.
func GetUserID(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return uid
	}
	return c.GetString("userId")
}
