package middlewares

import (
	"net/http"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the token header to a session user and loads
// identity, role and contractor link into the request context. History and
// authorization scopes read these, so they must be set here once.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)

		user, err := models.CurrentUser(ctx)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
		ctx = utils.SetContractorIdInContext(ctx, user.ContractorId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
