package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/mozart-api/internal/config"
	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/domain/repository"
	"github.com/yourusername/mozart-api/pkg/auth"
)

const facebookProvider = "facebook"

const facebookGraphVersion = "v18.0"

// FacebookOAuthService реализует вход через Facebook: обмен кода на
// access_token и запрос профиля через Graph API с appsecret_proof.
type FacebookOAuthService struct {
	resolver   oauthAccountResolver
	states     *OAuthStateStore
	jwtService *auth.JWTService
	cfg        config.FacebookOAuthConfig
	httpClient *http.Client
}

func NewFacebookOAuthService(
	userRepo repository.UserRepository,
	identityRepo repository.UserIdentityRepository,
	states *OAuthStateStore,
	jwtService *auth.JWTService,
	emailService EmailService,
	cfg config.FacebookOAuthConfig,
) (*FacebookOAuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if identityRepo == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if states == nil {
		return nil, fmt.Errorf("oauth state store is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	return &FacebookOAuthService{
		resolver: oauthAccountResolver{
			userRepo:     userRepo,
			identityRepo: identityRepo,
			emailService: emailService,
		},
		states:     states,
		jwtService: jwtService,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Enabled сообщает, настроен ли провайдер
func (s *FacebookOAuthService) Enabled() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

// AuthCodeURL формирует URL диалога входа Facebook и выдает state
func (s *FacebookOAuthService) AuthCodeURL() (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: facebook oauth is not configured", ErrFacebookTokenVerificationFailed)
	}

	state, err := s.states.Issue(facebookProvider)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("client_id", s.cfg.ClientID)
	values.Set("redirect_uri", s.cfg.RedirectURI)
	values.Set("response_type", "code")
	values.Set("scope", "email,public_profile")
	values.Set("state", state)

	return fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth?%s", facebookGraphVersion, values.Encode()), nil
}

// HandleCallback обрабатывает колбэк Facebook и возвращает пользователя
// с JWT приложения
func (s *FacebookOAuthService) HandleCallback(ctx context.Context, code, state string) (*entity.User, string, error) {
	if err := s.states.Consume(facebookProvider, state); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(code) == "" {
		return nil, "", fmt.Errorf("%w: code is required", ErrFacebookTokenVerificationFailed)
	}

	accessToken, err := s.exchangeCodeForAccessToken(ctx, code)
	if err != nil {
		return nil, "", err
	}

	profile, err := s.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, "", err
	}

	// Facebook отдает email только подтверждённым аккаунтам
	user, err := s.resolver.resolve(facebookProvider, profile.ID, profile.Email, profile.Email != "", profile.Name)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *FacebookOAuthService) exchangeCodeForAccessToken(ctx context.Context, code string) (string, error) {
	values := url.Values{}
	values.Set("client_id", s.cfg.ClientID)
	values.Set("client_secret", s.cfg.ClientSecret)
	values.Set("redirect_uri", s.cfg.RedirectURI)
	values.Set("code", code)

	endpoint := fmt.Sprintf("https://graph.facebook.com/%s/oauth/access_token?%s",
		facebookGraphVersion, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create facebook token exchange request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("facebook token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: facebook token exchange status=%d body=%s",
			ErrFacebookTokenVerificationFailed, resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse facebook token exchange response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: access_token not returned by facebook", ErrFacebookTokenVerificationFailed)
	}

	return payload.AccessToken, nil
}

type facebookProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *FacebookOAuthService) fetchProfile(ctx context.Context, accessToken string) (*facebookProfile, error) {
	values := url.Values{}
	values.Set("fields", "id,name,email")
	values.Set("access_token", accessToken)
	// appsecret_proof подтверждает, что запрос исходит от владельца app secret
	values.Set("appsecret_proof", s.appSecretProof(accessToken))

	endpoint := fmt.Sprintf("https://graph.facebook.com/%s/me?%s", facebookGraphVersion, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create facebook profile request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: facebook profile status=%d body=%s",
			ErrFacebookTokenVerificationFailed, resp.StatusCode, string(body))
	}

	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse facebook profile response: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile id is missing", ErrFacebookTokenVerificationFailed)
	}

	return &profile, nil
}

func (s *FacebookOAuthService) appSecretProof(accessToken string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.ClientSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}
