package restapi

// Package restapi implements the DirectoryAPI port against the recruitment
// backend. The backend exposes two parallel auth surfaces (admin under
// /api/auth, candidate under /auth) whose response payloads differ in shape;
// JMESPath expressions absorb the differences at this boundary.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/tanodigital/hr-client-go/config"
	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// Field-extraction expressions tolerant of both backend payload shapes.
const (
	exprToken       = "token || accessToken || jwt"
	exprID          = "id || uid || userId || _id"
	exprDisplayName = "displayName || name || fullName || username"
	exprEmail       = "email"
	exprRole        = "role"
	exprIsAdmin     = "isAdmin"
)

// Client is the backend REST client.
type Client struct {
	cfg        config.BackendConfig
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.DirectoryAPI = (*Client)(nil)

// Options groups dependencies for Client.
type Options struct {
	Config config.BackendConfig
	// HTTPClient is optional; http.DefaultClient is used when nil. Pass an
	// unauthenticated client here: login and OTP endpoints are public, and
	// profile requests carry their token explicitly.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient constructs a backend REST client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: opts.Config, httpClient: httpClient, logger: logger}
}

func (c *Client) loginPath(role domainauth.Role) string {
	if role == domainauth.RoleAdmin {
		return c.cfg.AdminLoginPath
	}
	return c.cfg.CandidateLoginPath
}

func (c *Client) profilePath(role domainauth.Role) string {
	if role == domainauth.RoleAdmin {
		return c.cfg.AdminProfilePath
	}
	return c.cfg.CandidateMePath
}

func (c *Client) registerPath(role domainauth.Role) string {
	if role == domainauth.RoleAdmin {
		return c.cfg.AdminRegisterPath
	}
	return c.cfg.CandidateRegPath
}

func (c *Client) Login(ctx context.Context, role domainauth.Role, identifier, secret string) (string, error) {
	if !role.Valid() {
		return "", apperrors.Validation("login role is required")
	}

	// The admin surface accepts either a username or an email; the candidate
	// surface is email-only.
	var body map[string]string
	if role == domainauth.RoleAdmin {
		body = map[string]string{"usernameOrEmail": identifier, "password": secret}
	} else {
		body = map[string]string{"email": identifier, "password": secret}
	}

	payload, err := c.postJSON(ctx, c.loginPath(role), "", body, loginFailure)
	if err != nil {
		return "", err
	}

	token := stringField(payload, exprToken)
	if token == "" {
		return "", apperrors.Internal("login response carried no token")
	}
	return token, nil
}

func (c *Client) Profile(ctx context.Context, role domainauth.Role, token string) (domainauth.Principal, error) {
	if token == "" {
		return domainauth.Principal{}, apperrors.Validation("profile token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.profilePath(role), nil)
	if err != nil {
		return domainauth.Principal{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build profile request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainauth.Principal{}, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "fetch profile")
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domainauth.Principal{}, apperrors.Unauthorized("profile request rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return domainauth.Principal{}, apperrors.Internalf("profile request failed with status %d", resp.StatusCode)
	}

	var payload any
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return domainauth.Principal{}, apperrors.Wrap(decodeErr, apperrors.ErrCodeInternal, "decode profile response")
	}

	return extractPrincipal(payload, role), nil
}

// extractPrincipal maps either backend profile shape onto a Principal.
// The admin surface signals authorization with an isAdmin flag; the
// candidate surface has no role field at all, so the endpoint's role is the
// fallback.
func extractPrincipal(payload any, endpointRole domainauth.Role) domainauth.Principal {
	p := domainauth.Principal{
		ID:          stringField(payload, exprID),
		DisplayName: stringField(payload, exprDisplayName),
		Email:       stringField(payload, exprEmail),
	}

	if roleStr := stringField(payload, exprRole); roleStr != "" {
		if role, err := domainauth.ParseRole(roleStr); err == nil {
			p.Role = role
			return p
		}
	}
	if isAdmin, ok := boolField(payload, exprIsAdmin); ok {
		if isAdmin {
			p.Role = domainauth.RoleAdmin
		} else {
			p.Role = domainauth.RoleCandidate
		}
		return p
	}
	p.Role = endpointRole
	return p
}

func (c *Client) Register(ctx context.Context, role domainauth.Role, in ports.RegisterInput) error {
	if !role.Valid() {
		return apperrors.Validation("register role is required")
	}

	var body map[string]string
	if role == domainauth.RoleAdmin {
		body = map[string]string{
			"username": in.Username,
			"email":    in.Email,
			"password": in.Password,
		}
	} else {
		body = map[string]string{
			"fullName": in.DisplayName,
			"email":    in.Email,
			"password": in.Password,
		}
	}

	_, err := c.postJSON(ctx, c.registerPath(role), "", body, genericFailure)
	return err
}

func (c *Client) RequestOTP(ctx context.Context, email string) error {
	_, err := c.postJSON(ctx, c.cfg.ForgotPasswordPath, "", map[string]string{"email": email}, otpFailure)
	return err
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := c.postJSON(ctx, c.cfg.VerifyOtpPath, "",
		map[string]string{"email": email, "otp": otp}, otpFailure)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newSecret string) error {
	_, err := c.postJSON(ctx, c.cfg.ResetPasswordPath, "",
		map[string]string{"email": email, "otp": otp, "newPassword": newSecret}, otpFailure)
	return err
}

// failureKind selects how a non-2xx status maps onto the error taxonomy.
type failureKind int

const (
	genericFailure failureKind = iota
	loginFailure
	otpFailure
)

func (c *Client) postJSON(ctx context.Context, path, token string, body any, kind failureKind) (any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeNetwork, "POST %s", path)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.mapFailure(resp, path, kind)
	}

	var payload any
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		// Some endpoints answer with an empty or plain-text body on success.
		return nil, nil //nolint:nilnil // absent payload is a valid success
	}
	return payload, nil
}

// mapFailure translates a non-2xx response into the closed error taxonomy.
// The backend answers with either {"message": ...} JSON or raw text.
func (c *Client) mapFailure(resp *http.Response, path string, kind failureKind) error {
	msg := responseMessage(resp)
	switch kind {
	case loginFailure:
		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden ||
			resp.StatusCode == http.StatusBadRequest {
			return apperrors.InvalidCredentials(msg)
		}
	case otpFailure:
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return apperrors.OtpFlow(msg)
		}
	case genericFailure:
	}
	return apperrors.Internalf("POST %s failed with status %d: %s", path, resp.StatusCode, msg)
}

func responseMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return http.StatusText(resp.StatusCode)
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func stringField(payload any, expr string) string {
	v, err := jmespath.Search(expr, payload)
	if err != nil || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func boolField(payload any, expr string) (value, present bool) {
	v, err := jmespath.Search(expr, payload)
	if err != nil || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func closeBody(body io.ReadCloser, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Debug("close response body failed", "error", err)
	}
}
