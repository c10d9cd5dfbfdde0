package message

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillswap/logger"
	"skillswap/middleware"
	"skillswap/module/message/model"
	"skillswap/module/message/store"
)

type Handler struct {
	messages *store.MessageStore
}

func NewHandler(messages *store.MessageStore) *Handler {
	return &Handler{messages: messages}
}

type sendReq struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// Send persists a direct message over HTTP. The realtime path through the
// socket relay is the usual route; this endpoint backs clients without a
// live connection.
func (h *Handler) Send(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to and content are required"})
		return
	}
	to, err := primitive.ObjectIDFromHex(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}

	m := &model.Message{
		ChatID:   model.ChatIDOf(uid.Hex(), to.Hex()),
		Sender:   uid,
		Receiver: to,
		Text:     req.Content,
	}
	if err := h.messages.Create(c.Request.Context(), m); err != nil {
		logger.Errorf("[Send] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent", "data": m})
}

// History returns the two-party conversation with :userId, oldest first.
func (h *Handler) History(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	other, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	msgs, err := h.messages.History(c.Request.Context(), uid, other)
	if err != nil {
		logger.Errorf("[History] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// MarkRead flags the conversation with :userId as read for the caller.
func (h *Handler) MarkRead(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	other, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	chatID := model.ChatIDOf(uid.Hex(), other.Hex())
	if err := h.messages.MarkRead(c.Request.Context(), chatID, uid); err != nil {
		logger.Errorf("[MarkRead] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}
