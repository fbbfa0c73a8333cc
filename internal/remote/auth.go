package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/logger"
)

// AuthClient signs users in on the auth service and reads their profile.
type AuthClient struct {
	c *client
}

func NewAuthClient(l *logger.Logger, conf Config) *AuthClient {
	return &AuthClient{c: newClient(l, "auth-api", conf)}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"` //nolint:tagliatelle
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp signInResponse

	err := a.c.do(ctx, http.MethodPost, "/sign_in", nil, signInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return "", auth.ErrInvalidCredentials
		}

		return "", err
	}

	if resp.AccessToken == "" {
		return "", fmt.Errorf("sign in response without token: %w", ErrInvalidData)
	}

	return resp.AccessToken, nil
}

// SignUp registers the user. The auth service mails the verification code itself.
func (a *AuthClient) SignUp(ctx context.Context, req *auth.SignUpRequest) error {
	err := a.c.do(ctx, http.MethodPost, "/sign_up", nil, req, nil)
	if errors.Is(err, ErrConflict) {
		return fmt.Errorf("%s: %w", req.Email, auth.ErrEmailExists)
	}

	return err
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (a *AuthClient) VerifyEmail(ctx context.Context, email, otp string) error {
	err := a.c.do(ctx, http.MethodPost, "/verify-email", nil, verifyEmailRequest{Email: email, OTP: otp}, nil)
	if errors.Is(err, ErrInvalidData) || errors.Is(err, booking.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", email, auth.ErrInvalidOTP)
	}

	return err
}

func (a *AuthClient) GetUser(ctx context.Context, token string) (map[string]any, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	var user map[string]any

	if err := a.c.do(ctx, http.MethodGet, "", header, nil, &user); err != nil {
		return nil, err
	}

	return user, nil
}
