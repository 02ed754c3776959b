package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodcycle-realtime/internal/repositories"
)

// MessageHandler serves persisted chat history.
type MessageHandler struct {
	repo repositories.MessageRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(repo repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{repo: repo}
}

// GetConversation returns the message history between two users, oldest
// first.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userA, err := strconv.Atoi(c.Param("user_a"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userB, err := strconv.Atoi(c.Param("user_b"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	msgs, err := h.repo.ListConversation(c.Request.Context(), userA, userB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
