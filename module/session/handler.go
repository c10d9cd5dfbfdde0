package session

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillswap/logger"
	"skillswap/middleware"
	"skillswap/module/session/model"
	"skillswap/module/session/store"
	userstore "skillswap/module/user/store"
)

type Handler struct {
	sessions *store.SessionStore
	users    *userstore.UserStore
}

func NewHandler(sessions *store.SessionStore, users *userstore.UserStore) *Handler {
	return &Handler{sessions: sessions, users: users}
}

// List returns the caller's sessions as teacher or learner.
func (h *Handler) List(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	sessions, err := h.sessions.ForUser(c.Request.Context(), uid)
	if err != nil {
		logger.Errorf("[List] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

type createReq struct {
	TeacherID string `json:"teacherId"`
	Skill     string `json:"skill"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// Create files a session request from the learner to a teacher.
func (h *Handler) Create(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || req.TeacherID == "" || req.Skill == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "teacherId and skill are required"})
		return
	}
	teacher, err := primitive.ObjectIDFromHex(req.TeacherID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid teacher id"})
		return
	}

	sess := &model.Session{
		Teacher: teacher,
		Learner: uid,
		Skill:   req.Skill,
		Date:    req.Date,
		Time:    req.Time,
		Status:  model.StatusPending,
	}
	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		logger.Errorf("[Create] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	if err := h.sessions.Populate(c.Request.Context(), sess); err != nil {
		logger.Errorf("[Create] populate: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session request sent", "session": sess})
}

type acceptReq struct {
	SessionID string `json:"sessionId"`
}

// Accept lets the teacher confirm a session; a meeting link is generated.
func (h *Handler) Accept(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req acceptReq
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "sessionId is required"})
		return
	}
	sid, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid session id"})
		return
	}

	sess, err := h.sessions.FindByID(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Session not found"})
		return
	}
	if sess.Teacher != uid {
		c.JSON(http.StatusForbidden, gin.H{"msg": "Only the teacher can accept this session"})
		return
	}

	liveLink := fmt.Sprintf("https://meet.jit.si/skillswap-%s", sess.ID.Hex())
	if err := h.sessions.Accept(c.Request.Context(), sid, liveLink); err != nil {
		logger.Errorf("[Accept] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	sess.Status = model.StatusAccepted
	sess.LiveLink = liveLink
	if err := h.sessions.Populate(c.Request.Context(), sess); err != nil {
		logger.Errorf("[Accept] populate: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session accepted", "session": sess})
}

type completeReq struct {
	SessionID string  `json:"sessionId"`
	Rating    float64 `json:"rating"`
	Feedback  string  `json:"feedback"`
}

// Complete closes a session with a rating; the teacher trust score becomes
// the running average round((old+rating)/2, 2).
func (h *Handler) Complete(c *gin.Context) {
	if _, ok := middleware.CurrentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "sessionId is required"})
		return
	}
	sid, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid session id"})
		return
	}

	sess, err := h.sessions.FindByID(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Session not found"})
		return
	}

	if err := h.sessions.Complete(c.Request.Context(), sid, req.Rating, req.Feedback); err != nil {
		logger.Errorf("[Complete] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	if teacher, terr := h.users.FindByID(c.Request.Context(), sess.Teacher); terr == nil {
		score := RollTrustScore(teacher.TrustScore, req.Rating)
		if uerr := h.users.UpdateTrustScore(c.Request.Context(), teacher.ID, score); uerr != nil {
			logger.Errorf("[Complete] trust score: %v", uerr)
		}
	}

	sess.Status = model.StatusCompleted
	sess.Rating = req.Rating
	sess.Feedback = req.Feedback
	c.JSON(http.StatusOK, gin.H{"message": "Session completed", "session": sess})
}

type sessionMsgReq struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// SendMessage appends a note to the session document.
func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req sessionMsgReq
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "sessionId and text are required"})
		return
	}
	sid, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid session id"})
		return
	}

	if err := h.sessions.AppendMessage(c.Request.Context(), sid, model.SessionMessage{
		Sender: uid,
		Text:   req.Text,
	}); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Session not found"})
		return
	}

	sess, err := h.sessions.FindByID(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RollTrustScore averages the old score with the new rating, kept to two
// decimals the way the client displays it.
func RollTrustScore(old, rating float64) float64 {
	return math.Round((old+rating)/2*100) / 100
}
