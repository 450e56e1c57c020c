package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"aficionado-be/internal/config"
	"aficionado-be/internal/identity"
	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/internal/pkg/serverutils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type LoginResult struct {
	AccessToken string
	Identity    identity.Identity
}

type IOAuthService interface {
	GetLoginURL(provider string) (url string, state string, err error)
	HandleCallback(ctx context.Context, provider, code string) (*LoginResult, error)
}

type oauthService struct {
	googleConf  *oauth2.Config
	userInfoURL string
	jwtSecret   string
	reserved    []string
	cfg         config.AuthConfig
	logger      logger.ILogger
}

// NewOAuthService builds the Google login flow. reserved lists storage prefixes
// no account may claim as its workspace.
func NewOAuthService(cfg config.AuthConfig, reserved []string, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		googleConf:  conf,
		userInfoURL: googleUserInfoURL,
		jwtSecret:   cfg.JWTSecret,
		reserved:    reserved,
		cfg:         cfg,
		logger:      log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, string, error) {
	if provider != "google" {
		return "", "", apperror.NewValidation("unsupported provider")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", apperror.NewInternal(err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), state, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code string) (*LoginResult, error) {
	if provider != "google" {
		return nil, apperror.NewValidation("unsupported provider")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("OAUTH", "Code exchange failed", map[string]interface{}{"error": err.Error()})
		return nil, apperror.NewUnauthorized("code exchange failed")
	}

	resp, err := s.googleConf.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("failed getting user info: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewUnauthorized(fmt.Sprintf("user info request failed with status %d", resp.StatusCode))
	}

	var googleUser struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("failed to parse user info: %w", err))
	}
	if !googleUser.VerifiedEmail {
		return nil, apperror.NewUnauthorized("google account email is not verified")
	}

	id, err := identity.Resolve(googleUser.Email, s.reserved...)
	if err != nil {
		return nil, err
	}

	accessToken, err := serverutils.IssueToken(s.jwtSecret, id.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	s.logger.Info("OAUTH", "User authenticated", map[string]interface{}{"username": id.Username})
	return &LoginResult{AccessToken: accessToken, Identity: id}, nil
}
