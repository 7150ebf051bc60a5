package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/pkg/response"
	"github.com/mksolution/account-service/pkg/validation"
)

// maxCertificateBytes caps the multipart upload size for business
// certificates.
const maxCertificateBytes = 10 << 20 // 10 MiB

// OnboardingHandler serves the business certificate workflow: client
// upload plus the admin review and search surface.
type OnboardingHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewOnboardingHandler(svc *application.Service, logger *logrus.Logger) *OnboardingHandler {
	return &OnboardingHandler{Svc: svc, Logger: logger}
}

type reviewRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	Approve *bool  `json:"approve" binding:"required"`
}

// UploadCertificate receives a multipart certificate file, stores it and
// moves the user into pending review.
// PUT /api/auth/upload-business-certificate/:id
func (h *OnboardingHandler) UploadCertificate(c *gin.Context) {
	var p pathID
	if err := c.ShouldBindUri(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCertificateBytes)
	fh, err := c.FormFile("certificate")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "certificate file is required", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "cannot read certificate file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadCertificate(c.Request.Context(), p.ID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, application.ErrStorageUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, err.Error(), nil)
			return
		}
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toView(u), "certificate submitted for review")
}

// ListOnboardedClients returns every client with a certificate pending
// or past review.
// GET /api/auth/admin/onboarded-clients
func (h *OnboardingHandler) ListOnboardedClients(c *gin.Context) {
	users, err := h.Svc.ListOnboardedClients(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toView(u))
	}
	response.Success(c, http.StatusOK, views, "")
}

// ReviewCertificate records an admin approve/reject decision.
// POST /api/auth/admin/review-business-certificate
func (h *OnboardingHandler) ReviewCertificate(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.ReviewCertificate(c.Request.Context(), req.UserID, *req.Approve)
	if err != nil {
		writeError(c, err)
		return
	}
	detail := "certificate rejected"
	if *req.Approve {
		detail = "certificate approved"
	}
	response.Success(c, http.StatusOK, toView(u), detail)
}

// SearchClients runs a free-text search over client names and emails.
// GET /api/auth/admin/search-clients?q=...&size=...
func (h *OnboardingHandler) SearchClients(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.SearchClients(c.Request.Context(), q, size)
	if err != nil {
		if errors.Is(err, application.ErrSearchUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, err.Error(), nil)
			return
		}
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "")
}
