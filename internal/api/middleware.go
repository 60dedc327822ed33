package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/ericogr/arena-engine/internal/constants"

	"github.com/gin-gonic/gin"
)

// AdminRequired guards the administrative round-lifecycle routes with a
// shared-secret header. Full user-level access control belongs to the host
// gateway and is intentionally not implemented here.
func AdminRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAdminTokenRequired})
			return
		}
		provided := c.GetHeader(constants.HeaderAdminToken)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAdminTokenInvalid})
			return
		}
		c.Next()
	}
}
