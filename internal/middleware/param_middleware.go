package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mozart-api/internal/exercise"
)

// ExtractUintParam создает middleware для извлечения и валидации числового параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		// Сохраняем как uint для единообразия
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

// ValidateCategoryParam проверяет параметр :category
func ValidateCategoryParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		if !exercise.IsValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exercise category", "error_type": "validation_error"})
			c.Abort()
			return
		}
		c.Set("category", category)
		c.Next()
	}
}

// ValidateDifficultyParam проверяет параметр :difficulty
func ValidateDifficultyParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		difficulty := c.Param("difficulty")
		if !exercise.IsValidDifficulty(difficulty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid difficulty level", "error_type": "validation_error"})
			c.Abort()
			return
		}
		c.Set("difficulty", difficulty)
		c.Next()
	}
}
