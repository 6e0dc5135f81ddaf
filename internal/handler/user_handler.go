package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/mozart-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с профилем, рекордами,
// лидербордами и друзьями
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Структуры запросов

// UpdateProfileRequest представляет запрос на обновление профиля
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Language *string `json:"language" binding:"omitempty"`
}

// UpdatePreferencesRequest представляет запрос на обновление настроек
type UpdatePreferencesRequest struct {
	Theme              *string `json:"theme" binding:"omitempty"`
	MasterVolume       *int    `json:"masterVolume" binding:"omitempty"`
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	SoundEffects       *bool   `json:"soundEffects"`
	Vibration          *bool   `json:"vibration"`
}

// AddFriendRequest представляет запрос на добавление друга
type AddFriendRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

// GetProfile возвращает профиль текущего пользователя со статистикой попыток
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	total, correct, err := h.userService.GetAttemptStats(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"totalAttempts":   total,
		"correctAttempts": correct,
	})
}

// UpdateProfile обновляет имя пользователя и язык интерфейса
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.userService.UpdateProfile(userID, service.ProfileUpdateInput{
		Username: req.Username,
		Language: req.Language,
	}); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UpdatePreferences обновляет настройки клиента
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.userService.UpdatePreferences(userID, service.PreferencesInput{
		Theme:              req.Theme,
		MasterVolume:       req.MasterVolume,
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
		SoundEffects:       req.SoundEffects,
		Vibration:          req.Vibration,
	}); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated"})
}

// GetScores возвращает рекорды пользователя по категориям и сложностям
func (h *UserHandler) GetScores(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scores, err := h.userService.GetScores(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

// GetGlobalLeaderboard возвращает глобальный лидерборд
func (h *UserHandler) GetGlobalLeaderboard(c *gin.Context) {
	limit, offset, ok := bindPagination(c)
	if !ok {
		return
	}

	entries, total, err := h.userService.GetGlobalLeaderboard(limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"total":       total,
	})
}

// GetExerciseLeaderboard возвращает лидерборд по категории упражнений
func (h *UserHandler) GetExerciseLeaderboard(c *gin.Context) {
	limit, offset, ok := bindPagination(c)
	if !ok {
		return
	}

	rows, total, err := h.userService.GetExerciseLeaderboard(c.Param("category"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": rows,
		"total":       total,
	})
}

// GetFriendsLeaderboard возвращает лидерборд среди друзей пользователя
func (h *UserHandler) GetFriendsLeaderboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, offset, ok := bindPagination(c)
	if !ok {
		return
	}

	entries, total, err := h.userService.GetFriendsLeaderboard(userID, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"total":       total,
	})
}

// ExportLeaderboard экспортирует глобальный лидерборд в Excel
// с использованием StreamWriter
func (h *UserHandler) ExportLeaderboard(c *gin.Context) {
	entries, _, err := h.userService.GetGlobalLeaderboard(100, 0)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\"leaderboard.xlsx\"")

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Лидерборд"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[UserHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"Место", "Пользователь", "Очки", "Монеты", "Лучшая серия"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[UserHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, entry := range entries {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{entry.Rank, sanitizeForExcel(entry.Username), entry.TotalScore, entry.Coins, entry.LongestStreak}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[UserHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[UserHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[UserHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// ListFriends возвращает друзей пользователя
func (h *UserHandler) ListFriends(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	friends, err := h.userService.ListFriends(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// AddFriend добавляет пользователя в список друзей по имени
func (h *UserHandler) AddFriend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	friend, err := h.userService.AddFriend(userID, req.Username)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"friend": friend})
}

// RemoveFriend удаляет пользователя из списка друзей.
// ID друга извлекается param middleware.
func (h *UserHandler) RemoveFriend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	friendID := c.MustGet("friend_id").(uint)
	if err := h.userService.RemoveFriend(userID, friendID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}
