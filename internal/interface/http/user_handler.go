package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/internal/domain/repository"
	"github.com/mksolution/account-service/pkg/response"
	"github.com/mksolution/account-service/pkg/validation"
)

// UserHandler serves profile reads and updates.
type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type pathID struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// updateUserRequest carries the editable profile fields. Anything not
// listed here (role, email, lifecycle flags) cannot be changed through
// this endpoint.
type updateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,e164"`
	ProfileURL *string `json:"profile_url" binding:"omitempty,url"`
	Address    *string `json:"address" binding:"omitempty,max=255"`
}

// GetUser returns a user's public profile.
// GET /api/user/data/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	var p pathID
	if err := c.ShouldBindUri(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	u, err := h.Svc.GetUser(c.Request.Context(), p.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toView(u), "")
}

// UpdateUser applies a partial profile update; absent fields are left
// untouched.
// PUT /api/user/data/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var p pathID
	if err := c.ShouldBindUri(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	patch := repository.ProfilePatch{
		Name:       req.Name,
		Phone:      req.Phone,
		ProfileURL: req.ProfileURL,
		Address:    req.Address,
	}
	if patch.Empty() {
		response.Error(c, http.StatusBadRequest, "no updatable fields in request", nil)
		return
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), p.ID, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toView(u), "profile updated")
}
