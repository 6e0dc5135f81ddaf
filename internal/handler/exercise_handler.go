package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/exercise"
	"github.com/yourusername/mozart-api/internal/service"
)

// ExerciseHandler обрабатывает генерацию, проверку и сабмит упражнений
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
	progressService *service.ProgressService
}

// NewExerciseHandler создает новый обработчик упражнений
func NewExerciseHandler(exerciseService *service.ExerciseService, progressService *service.ProgressService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		progressService: progressService,
	}
}

// Структуры запросов

// ValidateChoiceRequest - проверка ответа с выбором варианта
type ValidateChoiceRequest struct {
	SelectedIndex *int `json:"selectedAnswerIndex" binding:"required"`
	CorrectIndex  *int `json:"correctAnswerIndex" binding:"required"`
}

// ValidateSequenceRequest - проверка последовательности нот
type ValidateSequenceRequest struct {
	UserSequence    []string `json:"userSequence" binding:"required"`
	CorrectSequence []string `json:"correctSequence" binding:"required"`
}

// ValidateSetRequest - проверка набора нот аккорда
type ValidateSetRequest struct {
	UserNotes    []string `json:"userNotes" binding:"required"`
	CorrectNotes []string `json:"correctNotes" binding:"required"`
}

// ValidateValueRequest - проверка числового ответа с допуском
type ValidateValueRequest struct {
	Difficulty    string   `json:"difficulty" binding:"required"`
	UserAnswer    *float64 `json:"userAnswer" binding:"required"`
	CorrectAnswer *float64 `json:"correctAnswer" binding:"required"`
}

// SubmitRequest - сабмит завершённой попытки
type SubmitRequest struct {
	Category      string         `json:"exerciseCategory" binding:"required"`
	Difficulty    string         `json:"difficulty" binding:"required"`
	IsCorrect     bool           `json:"isCorrect"`
	UserAnswer    string         `json:"userAnswer" binding:"omitempty,max=255"`
	CorrectAnswer string         `json:"correctAnswer" binding:"omitempty,max=255"`
	Accuracy      float64        `json:"accuracy" binding:"omitempty,min=0,max=100"`
	TimeTaken     int            `json:"timeTaken" binding:"omitempty,min=0"`
	ExerciseData  entity.JSONMap `json:"exerciseData"`
}

// ListTypes возвращает каталог упражнений
func (h *ExerciseHandler) ListTypes(c *gin.Context) {
	types, err := h.exerciseService.ListTypes()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

// Generate создает новое упражнение указанной категории и сложности
func (h *ExerciseHandler) Generate(c *gin.Context) {
	generated, err := h.exerciseService.Generate(c.Param("category"), c.Param("difficulty"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, generated)
}

// ValidateGuessNote проверяет ответ упражнения "угадай ноту"
func (h *ExerciseHandler) ValidateGuessNote(c *gin.Context) {
	var req ValidateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, exercise.ValidateGuessNote(*req.SelectedIndex, *req.CorrectIndex))
}

// ValidateIntervals проверяет последовательность нот
func (h *ExerciseHandler) ValidateIntervals(c *gin.Context) {
	var req ValidateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, exercise.ValidateIntervals(req.UserSequence, req.CorrectSequence))
}

// ValidateHarmonies проверяет набор нот аккорда
func (h *ExerciseHandler) ValidateHarmonies(c *gin.Context) {
	var req ValidateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, exercise.ValidateHarmonies(req.UserNotes, req.CorrectNotes))
}

// ValidateValue проверяет числовой ответ панорамы, громкости или эквалайзера.
// Допуск определяется категорией и сложностью на сервере.
func (h *ExerciseHandler) ValidateValue(c *gin.Context) {
	category := c.Param("category")

	var req ValidateValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if !exercise.IsValidDifficulty(req.Difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid difficulty level", "error_type": "validation_error"})
		return
	}

	tolerance, ok := exercise.ToleranceFor(category, req.Difficulty)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exercise category", "error_type": "validation_error"})
		return
	}

	var result exercise.ValueResult
	switch category {
	case exercise.CategoryPanning:
		result = exercise.ValidatePanning(*req.UserAnswer, *req.CorrectAnswer, tolerance)
	case exercise.CategoryVolumes:
		result = exercise.ValidateVolumes(*req.UserAnswer, *req.CorrectAnswer, tolerance)
	default:
		result = exercise.ValidateEqualizing(*req.UserAnswer, *req.CorrectAnswer, tolerance)
	}

	c.JSON(http.StatusOK, result)
}

// Submit применяет завершённую попытку к прогрессу пользователя
func (h *ExerciseHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.progressService.Submit(userID, service.SubmitInput{
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		IsCorrect:     req.IsCorrect,
		UserAnswer:    req.UserAnswer,
		CorrectAnswer: req.CorrectAnswer,
		Accuracy:      req.Accuracy,
		TimeTakenSec:  req.TimeTaken,
		ExerciseData:  req.ExerciseData,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttempts возвращает историю попыток пользователя
func (h *ExerciseHandler) GetAttempts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, offset, ok := bindPagination(c)
	if !ok {
		return
	}
	category := c.Query("category")

	attempts, total, err := h.progressService.GetUserAttempts(userID, category, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"total":    total,
	})
}
