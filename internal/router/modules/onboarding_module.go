package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/mksolution/account-service/internal/domain/entity"
	handlers "github.com/mksolution/account-service/internal/interface/http"
	"github.com/mksolution/account-service/internal/interface/middleware"
	"github.com/mksolution/account-service/pkg/helpers"
)

// OnboardingModule mounts the business certificate workflow. The upload
// endpoint needs a valid bearer token; the review, listing and search
// endpoints additionally require the admin role.
type OnboardingModule struct {
	Handler  *handlers.OnboardingHandler
	JWT      *helpers.JWTManager
	Sessions *helpers.SessionStore
}

func NewOnboardingModule(h *handlers.OnboardingHandler, jwt *helpers.JWTManager, sessions *helpers.SessionStore) *OnboardingModule {
	return &OnboardingModule{Handler: h, JWT: jwt, Sessions: sessions}
}

func (m *OnboardingModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth", middleware.BearerAuth(m.JWT, m.Sessions))
	{
		auth.PUT("/upload-business-certificate/:id", m.Handler.UploadCertificate)
	}

	admin := auth.Group("/admin", middleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/onboarded-clients", m.Handler.ListOnboardedClients)
		admin.POST("/review-business-certificate", m.Handler.ReviewCertificate)
		admin.GET("/search-clients", m.Handler.SearchClients)
	}
}
