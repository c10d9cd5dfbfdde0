package match

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillswap/logger"
	"skillswap/middleware"
	"skillswap/module/user/model"
	"skillswap/module/user/store"
)

type Handler struct {
	users *store.UserStore
}

func NewHandler(users *store.UserStore) *Handler {
	return &Handler{users: users}
}

// Matches returns teachers whose teach skills intersect the caller's learn
// skills by exact (case-insensitive) name.
func (h *Handler) Matches(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	me, err := h.users.FindByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
		return
	}

	names := me.LearnSkillNames()
	if len(names) == 0 {
		c.JSON(http.StatusOK, []model.User{})
		return
	}

	teachers, err := h.users.TeachersOfAny(c.Request.Context(), uid, names)
	if err != nil {
		logger.Errorf("[Matches] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	if teachers == nil {
		teachers = []model.User{}
	}
	c.JSON(http.StatusOK, teachers)
}

// AiMatches fuzzy-matches learn skills to teach skills with bigram
// similarity, so "guitar" still finds "acoustic guitar".
func (h *Handler) AiMatches(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	me, err := h.users.FindByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
		return
	}

	names := me.LearnSkillNames()
	if len(names) == 0 {
		c.JSON(http.StatusOK, gin.H{"matches": []Candidate{}})
		return
	}

	teachers, err := h.users.AllTeachers(c.Request.Context(), uid)
	if err != nil {
		logger.Errorf("[AiMatches] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	matches := make([]Candidate, 0, len(teachers))
	for i := range teachers {
		if cand, ok := Score(names, &teachers[i]); ok {
			matches = append(matches, cand)
		}
	}
	Rank(matches)

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
