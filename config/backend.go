package config

import "strings"

// BackendConfig contains the backend REST API configuration.
//
// The path defaults preserve the split surface the backend exposes: admin
// routes live under /api/auth, candidate routes under /auth.
type BackendConfig struct {
	// BaseURL is the backend origin, without a trailing slash.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	AdminLoginPath     string `env:"ADMIN_LOGIN_PATH"     envDefault:"/api/auth/login"`
	AdminProfilePath   string `env:"ADMIN_PROFILE_PATH"   envDefault:"/api/auth/me"`
	AdminRegisterPath  string `env:"ADMIN_REGISTER_PATH"  envDefault:"/api/auth/register"`
	CandidateLoginPath string `env:"CAND_LOGIN_PATH"      envDefault:"/auth/CandidateLogin"`
	CandidateMePath    string `env:"CAND_PROFILE_PATH"    envDefault:"/auth/candidates/me"`
	CandidateRegPath   string `env:"CAND_REGISTER_PATH"   envDefault:"/auth/CandidateRegister"`

	ForgotPasswordPath string `env:"FORGOT_PASSWORD_PATH" envDefault:"/api/auth/forgot-password"`
	VerifyOtpPath      string `env:"VERIFY_OTP_PATH"      envDefault:"/api/auth/verify-otp"`
	ResetPasswordPath  string `env:"RESET_PASSWORD_PATH"  envDefault:"/api/auth/reset-password"`
}

// Sanitize applies guardrails to backend configuration values.
func (c *BackendConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}
