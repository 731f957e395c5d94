package middleware

import "github.com/gin-gonic/gin"

const (
	// ActorHeader identifies the operator or system performing the request
	ActorHeader = "X-Actor-ID"

	// ActorKey is the key used to store the actor in the context
	ActorKey = "actor"
)

// Actor extracts the acting identity from the request headers. Mutating
// endpoints require it; handlers reject requests without one.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(ActorHeader); actor != "" {
			c.Set(ActorKey, actor)
		}
		c.Next()
	}
}

// GetActor retrieves the actor from the gin context, empty when absent
func GetActor(c *gin.Context) string {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(string); ok {
			return actor
		}
	}
	return ""
}
