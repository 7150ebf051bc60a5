package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/internal/domain/entity"
	"github.com/mksolution/account-service/pkg/response"
)

// writeError maps service and lifecycle errors onto HTTP statuses and
// the JSON envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrDuplicateUser):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, entity.ErrCodeExpired),
		errors.Is(err, entity.ErrCodeMismatch),
		errors.Is(err, entity.ErrCodeUsed),
		errors.Is(err, entity.ErrNoCodeIssued):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, entity.ErrEmailNotVerified),
		errors.Is(err, entity.ErrNotPendingReview):
		response.Error(c, http.StatusPreconditionFailed, err.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// userView is the public projection of a user; password and code fields
// never leave the service.
type userView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Role            string    `json:"role"`
	ProfileURL      string    `json:"profile_url,omitempty"`
	Address         string    `json:"address,omitempty"`
	BusinessURL     string    `json:"business_url,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsOnboarded     bool      `json:"is_onboarded"`
	IsApproved      bool      `json:"is_approved"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toView(u *entity.User) userView {
	return userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		Role:            string(u.Role),
		ProfileURL:      u.ProfileURL,
		Address:         u.Address,
		BusinessURL:     u.BusinessURL,
		IsEmailVerified: u.IsEmailVerified,
		IsOnboarded:     u.IsOnboarded,
		IsApproved:      u.IsApproved,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
