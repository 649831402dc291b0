package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/services"
)

type AnswerHandler struct {
	questions *services.QuestionService
}

func NewAnswerHandler(questions *services.QuestionService) *AnswerHandler {
	return &AnswerHandler{questions: questions}
}

// GetAnswers returns all answers for a question, oldest first
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, ok := pathID(c, "id", "Question not found")
	if !ok {
		return
	}
	answers, err := h.questions.Answers(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

// CreateAnswer answers a question
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	questionID, ok := pathID(c, "id", "Question not found")
	if !ok {
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Answer body is required")
		return
	}

	userID, _ := extractUserID(c)
	answer, err := h.questions.Answer(c.Request.Context(), questionID, userID, input.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}
