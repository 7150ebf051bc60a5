package entity

import (
	"errors"
	"time"
)

// Lifecycle errors. Handlers map these onto HTTP statuses.
var (
	ErrNoCodeIssued     = errors.New("no verification code issued")
	ErrCodeUsed         = errors.New("verification code already used")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeMismatch     = errors.New("verification code mismatch")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrNotPendingReview = errors.New("user has no certificate pending review")
)

// The user record carries two independent lifecycle tracks.
//
// Email track: unverified -> verified, one way, driven by consuming a
// one-time code. Onboarding track: not onboarded -> pending review ->
// approved, where rejection drops back to not onboarded and a fresh
// certificate upload from any verified state re-enters pending review.
// The methods below are pure mutations on the aggregate; callers persist
// the result.

// IssueVerifyCode stores a fresh email verification code. Re-issuing
// replaces any outstanding code and resets the used flag.
func (u *User) IssueVerifyCode(code string, expiry time.Time) {
	u.VerifyCode = &code
	u.VerifyCodeExpiry = &expiry
	u.VerifyCodeUsed = false
}

// CheckVerifyCode validates the supplied code against the outstanding
// one. Expiry is checked before the code itself so an attacker holding
// a stale code learns nothing about its correctness. The check does NOT
// consume the code; call ConsumeVerifyCode after a successful check.
func (u *User) CheckVerifyCode(supplied string, now time.Time) error {
	if u.VerifyCode == nil || u.VerifyCodeExpiry == nil {
		return ErrNoCodeIssued
	}
	if u.VerifyCodeUsed {
		return ErrCodeUsed
	}
	if now.After(*u.VerifyCodeExpiry) {
		return ErrCodeExpired
	}
	if supplied != *u.VerifyCode {
		return ErrCodeMismatch
	}
	return nil
}

// ConsumeVerifyCode marks the outstanding code used, clears it, and
// flips the email track to verified. The verified flag never goes back.
func (u *User) ConsumeVerifyCode() {
	u.VerifyCode = nil
	u.VerifyCodeExpiry = nil
	u.VerifyCodeUsed = true
	u.IsEmailVerified = true
}

// IssueResetCode stores a fresh password-reset code, independent of the
// verification track.
func (u *User) IssueResetCode(code string, expiry time.Time) {
	u.ResetCode = &code
	u.ResetCodeExpiry = &expiry
	u.ResetCodeUsed = false
}

// CheckResetCode mirrors CheckVerifyCode for the reset track.
func (u *User) CheckResetCode(supplied string, now time.Time) error {
	if u.ResetCode == nil || u.ResetCodeExpiry == nil {
		return ErrNoCodeIssued
	}
	if u.ResetCodeUsed {
		return ErrCodeUsed
	}
	if now.After(*u.ResetCodeExpiry) {
		return ErrCodeExpired
	}
	if supplied != *u.ResetCode {
		return ErrCodeMismatch
	}
	return nil
}

// ConsumeResetCode marks the reset code used and installs the new
// password hash.
func (u *User) ConsumeResetCode(passwordHash string) {
	u.ResetCode = nil
	u.ResetCodeExpiry = nil
	u.ResetCodeUsed = true
	u.Password = passwordHash
}

// SubmitCertificate records a business certificate upload and moves the
// onboarding track to pending review. Requires a verified email. A
// re-upload after approval resets the approval and re-enters review.
func (u *User) SubmitCertificate(businessURL string) error {
	if !u.IsEmailVerified {
		return ErrEmailNotVerified
	}
	u.BusinessURL = businessURL
	u.IsOnboarded = true
	u.IsApproved = false
	return nil
}

// Review applies an admin decision. The target must have a certificate
// pending review (onboarded); approving flags the account, rejecting
// returns it to the start of the onboarding track so the user can
// resubmit.
func (u *User) Review(approve bool) error {
	if !u.IsOnboarded {
		return ErrNotPendingReview
	}
	if approve {
		u.IsApproved = true
		return nil
	}
	u.IsOnboarded = false
	u.IsApproved = false
	return nil
}
