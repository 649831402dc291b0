package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/models"
	"github.com/kodcommunity/forum/backend/internal/services"
)

type QuestionHandler struct {
	questions *services.QuestionService
	votes     *services.VotingService
}

func NewQuestionHandler(questions *services.QuestionService, votes *services.VotingService) *QuestionHandler {
	return &QuestionHandler{questions: questions, votes: votes}
}

// GetQuestions returns every question, newest first
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	questions, err := h.questions.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetPopularQuestions returns the most upvoted questions
func (h *QuestionHandler) GetPopularQuestions(c *gin.Context) {
	questions, err := h.questions.Popular(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion returns a single question and counts the view
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := pathID(c, "id", "Question not found")
	if !ok {
		return
	}
	question, err := h.questions.Get(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion posts a new question (PROTECTED - requires authentication)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "All fields are required.")
		return
	}

	userID, _ := extractUserID(c)
	question, err := h.questions.Post(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Question posted successfully", "question": question})
}

// VoteQuestion casts the caller's vote (PROTECTED - requires authentication)
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	questionID, ok := pathID(c, "id", "Question not found")
	if !ok {
		return
	}

	var input struct {
		VoteType models.VoteType `json:"voteType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid vote type")
		return
	}

	userID, _ := extractUserID(c)
	votes, err := h.votes.CastVote(c.Request.Context(), questionID, userID, input.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
