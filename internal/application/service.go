package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mksolution/account-service/internal/domain/entity"
	repo "github.com/mksolution/account-service/internal/domain/repository"
	"github.com/mksolution/account-service/pkg/helpers"
	"github.com/mksolution/account-service/pkg/mailer"
)

// Service orchestrates the account lifecycle: registration, email
// verification, login, profile updates and business onboarding. All
// side channels (Redis sessions, RabbitMQ email jobs, GCS uploads,
// Elasticsearch indexing) are optional; a nil client disables the
// corresponding feature without failing the core operation.
type Service struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Sessions *helpers.SessionStore
	Pub      *helpers.RabbitPublisher
	Logger   *logrus.Logger

	GCS       *storage.Client
	GCSBucket string

	ES           *elasticsearch.Client
	ESUsersIndex string

	OTPTTL      time.Duration
	AccessTTL   time.Duration
	MailEnabled bool
}

// RegisterInput carries validated registration data. Password is plaintext
// here and hashed before it touches the repository.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  string
}

// RegisterResult reports the created user and whether the verification
// email made it onto the queue. User creation is committed regardless
// of email delivery; a false EmailQueued is a degraded success, never a
// rollback.
type RegisterResult struct {
	User        *entity.User
	EmailQueued bool
}

// TokenResult is the bearer credential issued at login.
type TokenResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// Register creates a user with both lifecycle tracks at their start
// states and queues a verification code email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		Role:     entity.RoleClient,
		Password: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// Two racing registrations can both pass the lookup above;
		// the unique constraint settles it.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	queued, err := s.issueVerifyCode(ctx, u)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: u, EmailQueued: queued}, nil
}

// SendVerifyCode issues a fresh verification code for an existing user,
// replacing any outstanding one, and queues the email.
func (s *Service) SendVerifyCode(ctx context.Context, email string) (bool, error) {
	u, err := s.getByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return s.issueVerifyCode(ctx, u)
}

func (s *Service) issueVerifyCode(ctx context.Context, u *entity.User) (bool, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return false, err
	}
	expiry := helpers.OTPExpiry(time.Now(), s.OTPTTL)
	u.IssueVerifyCode(code, expiry)
	if err := s.Repo.Save(ctx, u); err != nil {
		return false, err
	}
	return s.enqueueEmail(ctx, u.Email, mailer.TemplateVerifyCode, map[string]any{
		"Name":      u.Name,
		"Code":      code,
		"ExpiresAt": expiry.Format("2006-01-02 15:04 MST"),
	}), nil
}

// VerifyEmail checks the supplied code and, on success, consumes it and
// flips the email track to verified. Check and consumption are distinct
// steps; both must happen here.
func (s *Service) VerifyEmail(ctx context.Context, email, code string, now time.Time) (*entity.User, error) {
	u, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := u.CheckVerifyCode(code, now); err != nil {
		return nil, err
	}
	u.ConsumeVerifyCode()
	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// Authenticate validates email and password. An unknown email and a
// wrong password return the same error so callers cannot tell which
// check failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a signed bearer token, recording a
// revocable session.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenResult{}, err
	}
	token, exp, err := s.JWT.Issue(u.Email, u.Role, time.Now())
	if err != nil {
		return nil, TokenResult{}, err
	}
	if err := s.Sessions.Put(ctx, u, s.AccessTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session store failed")
	}
	return u, TokenResult{Token: token, TokenType: "bearer", ExpiresAt: exp}, nil
}

// ForgotPassword issues a reset code on the independent reset track and
// queues the email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (bool, error) {
	u, err := s.getByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return false, err
	}
	expiry := helpers.OTPExpiry(time.Now(), s.OTPTTL)
	u.IssueResetCode(code, expiry)
	if err := s.Repo.Save(ctx, u); err != nil {
		return false, err
	}
	return s.enqueueEmail(ctx, u.Email, mailer.TemplateResetPassword, map[string]any{
		"Name":      u.Name,
		"Code":      code,
		"ExpiresAt": expiry.Format("2006-01-02 15:04 MST"),
	}), nil
}

// ResetPassword consumes a valid reset code, installs the new password
// and revokes any live session so stolen tokens die with the old
// password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string, now time.Time) error {
	u, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := u.CheckResetCode(code, now); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.ConsumeResetCode(hash)
	if err := s.Repo.Save(ctx, u); err != nil {
		return err
	}
	if err := s.Sessions.Drop(ctx, u.Email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session drop failed")
	}
	return nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateUser applies an allow-listed profile patch.
func (s *Service) UpdateUser(ctx context.Context, id string, patch repo.ProfilePatch) (*entity.User, error) {
	u, err := s.Repo.UpdateProfile(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// SubmitCertificate records a certificate already stored at url and
// moves the user into pending review. The email-verified guard lives in
// the entity.
func (s *Service) SubmitCertificate(ctx context.Context, id, url string) (*entity.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.SubmitCertificate(url); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// UploadCertificate streams a certificate file to GCS and submits the
// resulting URL.
func (s *Service) UploadCertificate(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	// Check the guard before paying for the upload.
	if !u.IsEmailVerified {
		return nil, entity.ErrEmailNotVerified
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrStorageUnavailable
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("certificates", id, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}
	return s.SubmitCertificate(ctx, id, url)
}

// ReviewCertificate applies an admin decision and notifies the user.
func (s *Service) ReviewCertificate(ctx context.Context, id string, approve bool) (*entity.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Review(approve); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.enqueueEmail(ctx, u.Email, mailer.TemplateReviewResult, map[string]any{
		"Name":     u.Name,
		"Approved": approve,
	})
	s.indexUser(ctx, u)
	return u, nil
}

// ListOnboardedClients returns clients with a certificate pending or
// past review.
func (s *Service) ListOnboardedClients(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.ListOnboardedClients(ctx)
}

func (s *Service) getByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// enqueueEmail puts an email job on the queue. Failures are logged and
// swallowed: user state is already committed and the caller reports a
// degraded success instead of rolling back.
func (s *Service) enqueueEmail(ctx context.Context, to, template string, data map[string]any) bool {
	if !s.MailEnabled || s.Pub == nil {
		return false
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("template", template).Warn("email enqueue failed")
		}
		return false
	}
	return true
}
