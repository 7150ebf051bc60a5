package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser() *User {
	return &User{ID: "u1", Email: "a@example.com", Role: RoleClient}
}

func TestCheckVerifyCode(t *testing.T) {
	t.Parallel()

	now := time.Now()
	expiry := now.Add(15 * time.Minute)

	t.Run("no code issued", func(t *testing.T) {
		u := newUser()
		assert.ErrorIs(t, u.CheckVerifyCode("123456", now), ErrNoCodeIssued)
	})

	t.Run("expired wins even when the code matches", func(t *testing.T) {
		u := newUser()
		u.IssueVerifyCode("123456", expiry)
		err := u.CheckVerifyCode("123456", expiry.Add(time.Second))
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("mismatch when not expired", func(t *testing.T) {
		u := newUser()
		u.IssueVerifyCode("123456", expiry)
		assert.ErrorIs(t, u.CheckVerifyCode("000000", now), ErrCodeMismatch)
	})

	t.Run("success requires both checks to pass", func(t *testing.T) {
		u := newUser()
		u.IssueVerifyCode("123456", expiry)
		assert.NoError(t, u.CheckVerifyCode("123456", now))
		assert.False(t, u.IsEmailVerified, "check alone must not consume")
	})
}

func TestConsumeVerifyCode_SingleUse(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := newUser()
	u.IssueVerifyCode("123456", now.Add(15*time.Minute))
	require.NoError(t, u.CheckVerifyCode("123456", now))
	u.ConsumeVerifyCode()

	assert.True(t, u.IsEmailVerified)
	assert.Nil(t, u.VerifyCode)
	assert.True(t, u.VerifyCodeUsed)

	// A second attempt with the same code must fail.
	assert.Error(t, u.CheckVerifyCode("123456", now))
}

func TestResetCode_Flow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := newUser()
	u.Password = "old-hash"
	u.IssueResetCode("654321", now.Add(15*time.Minute))

	assert.ErrorIs(t, u.CheckResetCode("111111", now), ErrCodeMismatch)
	require.NoError(t, u.CheckResetCode("654321", now))
	u.ConsumeResetCode("new-hash")

	assert.Equal(t, "new-hash", u.Password)
	assert.Nil(t, u.ResetCode)
	assert.Error(t, u.CheckResetCode("654321", now), "reset code is single use")
}

func TestSubmitCertificate_RequiresVerifiedEmail(t *testing.T) {
	t.Parallel()

	u := newUser()
	err := u.SubmitCertificate("https://storage.example.com/cert.pdf")
	require.ErrorIs(t, err, ErrEmailNotVerified)
	assert.False(t, u.IsOnboarded)

	u.IsEmailVerified = true
	require.NoError(t, u.SubmitCertificate("https://storage.example.com/cert.pdf"))
	assert.True(t, u.IsOnboarded)
	assert.False(t, u.IsApproved)
	assert.Equal(t, "https://storage.example.com/cert.pdf", u.BusinessURL)
}

func TestReview_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("review without pending certificate is rejected", func(t *testing.T) {
		u := newUser()
		assert.ErrorIs(t, u.Review(true), ErrNotPendingReview)
		assert.ErrorIs(t, u.Review(false), ErrNotPendingReview)
	})

	t.Run("approve", func(t *testing.T) {
		u := newUser()
		u.IsEmailVerified = true
		require.NoError(t, u.SubmitCertificate("url"))
		require.NoError(t, u.Review(true))
		assert.True(t, u.IsApproved)
		assert.True(t, u.IsOnboarded)
	})

	t.Run("reject returns to start of onboarding track", func(t *testing.T) {
		u := newUser()
		u.IsEmailVerified = true
		require.NoError(t, u.SubmitCertificate("url"))
		require.NoError(t, u.Review(false))
		assert.False(t, u.IsApproved)
		assert.False(t, u.IsOnboarded)
	})

	t.Run("re-upload after approval resets to pending review", func(t *testing.T) {
		u := newUser()
		u.IsEmailVerified = true
		require.NoError(t, u.SubmitCertificate("url-1"))
		require.NoError(t, u.Review(true))
		require.NoError(t, u.SubmitCertificate("url-2"))
		assert.True(t, u.IsOnboarded)
		assert.False(t, u.IsApproved, "new certificate requires a new review")
	})
}
