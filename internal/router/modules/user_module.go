package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/mksolution/account-service/internal/interface/http"
	"github.com/mksolution/account-service/internal/interface/middleware"
	"github.com/mksolution/account-service/pkg/helpers"
)

// UserModule mounts the profile endpoints:
// GET /api/user/data/:id and PUT /api/user/data/:id, both behind bearer
// auth.
type UserModule struct {
	Handler  *handlers.UserHandler
	JWT      *helpers.JWTManager
	Sessions *helpers.SessionStore
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, sessions *helpers.SessionStore) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Sessions: sessions}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	user := rg.Group("/user", middleware.BearerAuth(m.JWT, m.Sessions))
	{
		user.GET("/data/:id", m.Handler.GetUser)
		user.PUT("/data/:id", m.Handler.UpdateUser)
	}
}
