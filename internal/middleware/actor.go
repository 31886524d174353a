package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

const actorContextKey = "actor"

// ActorMiddleware trusts the session layer in front of this service to have
// authenticated the caller; it only lifts the already-resolved identity and
// role out of the headers.
type ActorMiddleware struct {
	log *logger.Logger
}

func NewActorMiddleware(baseLog *logger.Logger) *ActorMiddleware {
	return &ActorMiddleware{log: baseLog.With("middleware", "ActorMiddleware")}
}

func (m *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Actor-Id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "missing or invalid actor id"}})
			return
		}
		role, ok := types.ParseRole(c.GetHeader("X-Actor-Role"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "missing or invalid actor role"}})
			return
		}
		c.Set(actorContextKey, types.Actor{ID: id, Role: role})
		c.Next()
	}
}

// ActorFromContext returns the actor placed by RequireActor. The zero actor
// (with false) only ever shows up on routes that skipped the middleware.
func ActorFromContext(c *gin.Context) (types.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return types.Actor{}, false
	}
	actor, ok := value.(types.Actor)
	return actor, ok
}
