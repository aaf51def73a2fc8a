package service

import (
	"context"
	"log/slog"
	"sync"

	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// resetStage tracks progress through the password-reset sequence per email.
type resetStage int

const (
	stageNone resetStage = iota
	stageRequested
	stageVerified
)

// ResetFlow drives the three-step password-reset sequence:
// RequestOTP -> VerifyOTP -> ResetPassword. The sequence is strictly
// linear: a step taken out of order is rejected client-side without a
// backend call. Each step is independently retryable; a failed retry does
// not invalidate a previously completed step.
type ResetFlow struct {
	api    ports.DirectoryAPI
	logger *slog.Logger

	mu     sync.Mutex
	stages map[string]resetStage
}

// ResetFlowOptions groups dependencies for ResetFlow.
type ResetFlowOptions struct {
	API    ports.DirectoryAPI
	Logger *slog.Logger
}

// NewResetFlow constructs a ResetFlow.
func NewResetFlow(opts ResetFlowOptions) *ResetFlow {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetFlow{
		api:    opts.API,
		logger: logger,
		stages: make(map[string]resetStage),
	}
}

// RequestOTP asks the backend to issue a one-time code out of band.
// Re-requesting restarts the sequence: any prior verification is dropped
// because the backend invalidates the old code.
func (f *ResetFlow) RequestOTP(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.Validation("email is required")
	}
	if err := f.api.RequestOTP(ctx, email); err != nil {
		return err
	}

	f.mu.Lock()
	f.stages[email] = stageRequested
	f.mu.Unlock()
	return nil
}

// VerifyOTP validates the code, authorizing the final reset step.
func (f *ResetFlow) VerifyOTP(ctx context.Context, email, otp string) error {
	if email == "" || otp == "" {
		return apperrors.Validation("email and OTP are required")
	}

	f.mu.Lock()
	stage := f.stages[email]
	f.mu.Unlock()
	if stage < stageRequested {
		return apperrors.OtpFlow("request an OTP before verifying")
	}

	if err := f.api.VerifyOTP(ctx, email, otp); err != nil {
		// The sequence position is unchanged; the caller may retry the code.
		return err
	}

	f.mu.Lock()
	f.stages[email] = stageVerified
	f.mu.Unlock()
	return nil
}

// ResetPassword commits the new credential. It requires a successful
// VerifyOTP for the same email first.
func (f *ResetFlow) ResetPassword(ctx context.Context, email, otp, newSecret string) error {
	if email == "" || otp == "" || newSecret == "" {
		return apperrors.Validation("email, OTP, and new password are required")
	}

	f.mu.Lock()
	stage := f.stages[email]
	f.mu.Unlock()
	if stage < stageVerified {
		return apperrors.OtpFlow("verify the OTP before resetting the password")
	}

	if err := f.api.ResetPassword(ctx, email, otp, newSecret); err != nil {
		// The verified stage survives: the OTP stays valid for a retry until
		// the backend's own expiry fires.
		return err
	}

	f.mu.Lock()
	delete(f.stages, email)
	f.mu.Unlock()
	f.logger.Info("password reset completed", "email", email)
	return nil
}
