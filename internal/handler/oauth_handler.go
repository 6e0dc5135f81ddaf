package handler

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mozart-api/internal/service"
)

// OAuthHandler обрабатывает вход через внешних провайдеров.
// Поток редиректный: браузер уходит на страницу согласия провайдера,
// колбэк возвращает пользователя на фронтенд с JWT в query-параметре.
type OAuthHandler struct {
	googleService   *service.GoogleOAuthService
	facebookService *service.FacebookOAuthService
	frontendURL     string
}

// NewOAuthHandler создает новый обработчик OAuth.
// Сервисы провайдеров могут быть nil, если провайдер не настроен.
func NewOAuthHandler(
	googleService *service.GoogleOAuthService,
	facebookService *service.FacebookOAuthService,
	frontendURL string,
) *OAuthHandler {
	return &OAuthHandler{
		googleService:   googleService,
		facebookService: facebookService,
		frontendURL:     frontendURL,
	}
}

// GoogleLogin перенаправляет на страницу согласия Google
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if h.googleService == nil || !h.googleService.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google login is not available", "error_type": "provider_disabled"})
		return
	}

	authURL, err := h.googleService.AuthCodeURL()
	if err != nil {
		log.Printf("[OAuthHandler] Ошибка формирования Google auth URL: %v", err)
		h.redirectError(c)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback обрабатывает колбэк Google
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if h.googleService == nil || !h.googleService.Enabled() {
		h.redirectError(c)
		return
	}

	user, token, err := h.googleService.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		log.Printf("[OAuthHandler] Ошибка Google callback: %v", err)
		h.redirectError(c)
		return
	}

	log.Printf("[OAuthHandler] Вход через Google: пользователь ID=%d", user.ID)
	h.redirectSuccess(c, token, "google")
}

// FacebookLogin перенаправляет на диалог входа Facebook
func (h *OAuthHandler) FacebookLogin(c *gin.Context) {
	if h.facebookService == nil || !h.facebookService.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facebook login is not available", "error_type": "provider_disabled"})
		return
	}

	authURL, err := h.facebookService.AuthCodeURL()
	if err != nil {
		log.Printf("[OAuthHandler] Ошибка формирования Facebook auth URL: %v", err)
		h.redirectError(c)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// FacebookCallback обрабатывает колбэк Facebook
func (h *OAuthHandler) FacebookCallback(c *gin.Context) {
	if h.facebookService == nil || !h.facebookService.Enabled() {
		h.redirectError(c)
		return
	}

	user, token, err := h.facebookService.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		log.Printf("[OAuthHandler] Ошибка Facebook callback: %v", err)
		h.redirectError(c)
		return
	}

	log.Printf("[OAuthHandler] Вход через Facebook: пользователь ID=%d", user.ID)
	h.redirectSuccess(c, token, "facebook")
}

func (h *OAuthHandler) redirectSuccess(c *gin.Context, token, provider string) {
	values := url.Values{}
	values.Set("token", token)
	values.Set("provider", provider)
	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/auth/success?%s", h.frontendURL, values.Encode()))
}

func (h *OAuthHandler) redirectError(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/auth/error?message=oauth_error", h.frontendURL))
}
