package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/pkg/response"
	"github.com/mksolution/account-service/pkg/validation"
)

// AuthHandler serves registration, login and the two code-based flows
// (email verification and password reset).
type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
	Password string `json:"password" binding:"required,pwd"`
	Address  string `json:"address" binding:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,otp"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userView  `json:"user"`
}

type registerResponse struct {
	User        userView `json:"user"`
	EmailQueued bool     `json:"email_queued"`
}

// Register creates an account and queues the verification email.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	detail := "user registered, verification code sent"
	if !res.EmailQueued {
		detail = "user registered, verification email could not be queued"
	}
	response.Success(c, http.StatusCreated, registerResponse{
		User:        toView(res.User),
		EmailQueued: res.EmailQueued,
	}, detail)
}

// Login exchanges credentials for a bearer token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	u, tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loginResponse{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
		User:        toView(u),
	}, "login successful")
}

// SendVerifyCode re-issues a verification code for an unverified user.
// POST /api/auth/send-verify-email-code
func (h *AuthHandler) SendVerifyCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	queued, err := h.Svc.SendVerifyCode(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	detail := "verification code sent"
	if !queued {
		detail = "verification code issued, email could not be queued"
	}
	response.Success(c, http.StatusOK, gin.H{"email_queued": queued}, detail)
}

// VerifyEmail consumes a verification code and marks the email verified.
// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.VerifyEmail(c.Request.Context(), req.Email, req.Code, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toView(u), "email verified")
}

// ForgotPassword issues a password reset code.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	queued, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	detail := "reset code sent"
	if !queued {
		detail = "reset code issued, email could not be queued"
	}
	response.Success(c, http.StatusOK, gin.H{"email_queued": queued}, detail)
}

// ResetPassword consumes a reset code and installs the new password.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword, time.Now()); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password reset")
}
