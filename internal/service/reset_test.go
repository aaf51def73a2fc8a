package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	mocks "github.com/tanodigital/hr-client-go/internal/mocks/auth"
)

const resetEmail = "user@example.com"

func newResetFixture() (*ResetFlow, *mocks.MockDirectoryAPI) {
	api := mocks.NewMockDirectoryAPI()
	return NewResetFlow(ResetFlowOptions{API: api}), api
}

func TestResetFlow_FullSequence(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))
	require.NoError(t, flow.VerifyOTP(ctx, resetEmail, "123456"))
	require.NoError(t, flow.ResetPassword(ctx, resetEmail, "123456", "new-pass"))

	assert.Equal(t, []string{"RequestOTP", "VerifyOTP", "ResetPassword"}, api.Calls())
}

func TestResetFlow_VerifyBeforeRequest(t *testing.T) {
	flow, api := newResetFixture()

	err := flow.VerifyOTP(context.Background(), resetEmail, "123456")
	require.Error(t, err)
	assert.True(t, apperrors.IsOtpFlow(err))
	// Rejected client-side: the backend never sees the out-of-order step.
	assert.Equal(t, 0, api.CallCount("VerifyOTP"))
}

func TestResetFlow_ResetBeforeVerify(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))

	err := flow.ResetPassword(ctx, resetEmail, "123456", "new-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsOtpFlow(err))
	assert.Equal(t, 0, api.CallCount("ResetPassword"))
}

func TestResetFlow_FailedVerifyIsRetryable(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	attempts := 0
	api.VerifyOTPFunc = func(_ context.Context, _, otp string) error {
		attempts++
		if otp != "654321" {
			return apperrors.OtpFlow("invalid or expired OTP")
		}
		return nil
	}

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))
	require.Error(t, flow.VerifyOTP(ctx, resetEmail, "000000"))
	require.NoError(t, flow.VerifyOTP(ctx, resetEmail, "654321"))
	require.NoError(t, flow.ResetPassword(ctx, resetEmail, "654321", "new-pass"))
	assert.Equal(t, 2, attempts)
}

func TestResetFlow_FailedResetKeepsVerifiedStage(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	calls := 0
	api.ResetPasswordFunc = func(context.Context, string, string, string) error {
		calls++
		if calls == 1 {
			return apperrors.Network("backend unreachable")
		}
		return nil
	}

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))
	require.NoError(t, flow.VerifyOTP(ctx, resetEmail, "123456"))
	require.Error(t, flow.ResetPassword(ctx, resetEmail, "123456", "new-pass"))

	// The verified stage survives a failed commit; no re-verification needed.
	require.NoError(t, flow.ResetPassword(ctx, resetEmail, "123456", "new-pass"))
}

func TestResetFlow_ReRequestDropsVerification(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))
	require.NoError(t, flow.VerifyOTP(ctx, resetEmail, "123456"))

	// A new code invalidates the old verification.
	require.NoError(t, flow.RequestOTP(ctx, resetEmail))

	err := flow.ResetPassword(ctx, resetEmail, "123456", "new-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsOtpFlow(err))
	assert.Equal(t, 0, api.CallCount("ResetPassword"))
}

func TestResetFlow_CompletedSequenceResets(t *testing.T) {
	flow, _ := newResetFixture()
	ctx := context.Background()

	require.NoError(t, flow.RequestOTP(ctx, resetEmail))
	require.NoError(t, flow.VerifyOTP(ctx, resetEmail, "123456"))
	require.NoError(t, flow.ResetPassword(ctx, resetEmail, "123456", "new-pass"))

	// Completion clears the per-email state; a fresh sequence is required.
	err := flow.ResetPassword(ctx, resetEmail, "123456", "other-pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsOtpFlow(err))
}

func TestResetFlow_ValidationErrors(t *testing.T) {
	flow, api := newResetFixture()
	ctx := context.Background()

	assert.True(t, apperrors.IsValidation(flow.RequestOTP(ctx, "")))
	assert.True(t, apperrors.IsValidation(flow.VerifyOTP(ctx, resetEmail, "")))
	assert.True(t, apperrors.IsValidation(flow.ResetPassword(ctx, resetEmail, "123456", "")))
	assert.Empty(t, api.Calls())
}
