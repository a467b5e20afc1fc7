package httpkit

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor is the caller resolved by AuthRequired. Services receive Actor.ID
// explicitly; nothing below the handler reads the gin context.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// HasRole reports whether the actor carries role. Matching ignores case.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// CurrentActor returns the authenticated actor, if any.
func CurrentActor(c *gin.Context) (Actor, bool) {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Actor{}, false
	}
	id, ok := raw.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return Actor{}, false
	}

	actor := Actor{ID: id}
	if roles, ok := c.Get(ContextRolesKey); ok {
		actor.Roles, _ = roles.([]string)
	}
	return actor, true
}

// MustGetActor aborts with 401 when the request is unauthenticated.
func MustGetActor(c *gin.Context) (Actor, bool) {
	actor, ok := CurrentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return Actor{}, false
	}
	return actor, true
}
