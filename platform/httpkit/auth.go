package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bd_pipeline_backend/platform/config"
	"bd_pipeline_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	errMissingToken = "missing token"
	errInvalidToken = "invalid token"

	tokenTypeAccess = "access"
)

// accessClaims is the token shape issued by the external identity gate.
type accessClaims struct {
	Type  string   `json:"type"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired verifies the bearer access token and stores the caller on
// the gin context (see CurrentActor) and on the request context for logging.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	secret := []byte(cfg.GetJWTAccessSecret())
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		actor, err := parseActor(parser, secret, rawToken)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		c.Set(ContextUserIDKey, actor.ID)
		c.Set(ContextRolesKey, actor.Roles)

		ctx := context.WithValue(c.Request.Context(), logger.ActorIDKey, actor.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseActor(parser *jwt.Parser, secret []byte, rawToken string) (Actor, error) {
	claims := &accessClaims{}
	_, err := parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return Actor{}, err
	}
	if claims.Type != tokenTypeAccess {
		return Actor{}, errors.New("not an access token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, err
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return Actor{ID: id, Roles: roles}, nil
}

// RequireRole rejects callers that do not carry role with 403.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !actor.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
