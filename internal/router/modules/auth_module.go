package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/mksolution/account-service/internal/interface/http"
)

// AuthModule mounts the public account endpoints: registration, login
// and the code-based verification and reset flows. None of these take a
// bearer token; the service-wide rate limiter is their only throttle.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/send-verify-email-code", m.Handler.SendVerifyCode)
		auth.POST("/verify-email", m.Handler.VerifyEmail)
		auth.POST("/forgot-password", m.Handler.ForgotPassword)
		auth.POST("/reset-password", m.Handler.ResetPassword)
	}
}
