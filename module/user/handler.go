package user

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"skillswap/logger"
	"skillswap/middleware"
	"skillswap/module/user/model"
	"skillswap/module/user/store"
	"skillswap/tools/security"
)

var nameRe = regexp.MustCompile(`^[A-Za-z ]+$`)

type Handler struct {
	users   *store.UserStore
	jwtOpts security.Options
	google  GoogleVerifier
}

func NewHandler(users *store.UserStore, jwtOpts security.Options, google GoogleVerifier) *Handler {
	return &Handler{users: users, jwtOpts: jwtOpts, google: google}
}

// ---- auth ----

type registerReq struct {
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}
	// both fullName and name are accepted from older clients
	name := req.FullName
	if name == "" {
		name = req.Name
	}
	if name == "" || !nameRe.MatchString(name) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Name can only contain letters"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Email and password are required"})
		return
	}

	if _, err := h.users.FindByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	u := &model.User{Name: name, Email: req.Email, Password: string(hashed)}
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		logger.Errorf("[Register] create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}

	u, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User not found"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Wrong password"})
		return
	}

	token, _, err := security.Generate(h.jwtOpts, u.ID.Hex(), u.Role)
	if err != nil {
		logger.Errorf("[Login] sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"_id":   u.ID,
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
			"photo": u.Photo,
		},
	})
}

type googleLoginReq struct {
	Token string `json:"token"`
}

// GoogleLogin verifies a Google ID token and creates the account on first use.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req googleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google login failed"})
		return
	}

	profile, err := h.google.Verify(c.Request.Context(), req.Token)
	if err != nil {
		logger.Errorf("[GoogleLogin] verify: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google login failed"})
		return
	}

	u, err := h.users.FindByEmail(c.Request.Context(), profile.Email)
	if err != nil {
		u = &model.User{
			Name:     profile.Name,
			Email:    profile.Email,
			Photo:    profile.Picture,
			Provider: model.ProviderGoogle,
		}
		if err := h.users.Create(c.Request.Context(), u); err != nil {
			logger.Errorf("[GoogleLogin] create user: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Google login failed"})
			return
		}
	}

	token, _, err := security.Generate(h.jwtOpts, u.ID.Hex(), u.Role)
	if err != nil {
		logger.Errorf("[GoogleLogin] sign token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u,
	})
}

// Me returns the current user without the password hash.
func (h *Handler) Me(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	u, err := h.users.FindByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
		return
	}
	u.Password = ""
	c.JSON(http.StatusOK, u)
}

// ---- profile ----

// UpdateProfile applies a partial update to name/skills/availability.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid body"})
		return
	}

	set := bson.M{}
	if v, ok := raw["name"].(string); ok {
		set["name"] = v
	}

	if skillsRaw, present := raw["skills"]; present {
		list, ok := skillsRaw.([]any)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Skills must be an array"})
			return
		}
		skills := make([]model.Skill, 0, len(list))
		for _, it := range list {
			m, _ := it.(map[string]any)
			sk := model.Skill{}
			sk.Name, _ = m["name"].(string)
			sk.Type, _ = m["type"].(string)
			sk.Level, _ = m["level"].(string)
			if sk.Name == "" || sk.Type == "" || sk.Level == "" {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "Each skill must have name, type, and level"})
				return
			}
			skills = append(skills, sk)
		}
		set["skills"] = skills
	}

	if availRaw, present := raw["availability"]; present {
		list, ok := availRaw.([]any)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Availability must be an array"})
			return
		}
		avail := make([]model.Availability, 0, len(list))
		for _, it := range list {
			m, _ := it.(map[string]any)
			a := model.Availability{}
			a.Day, _ = m["day"].(string)
			a.Time, _ = m["time"].(string)
			avail = append(avail, a)
		}
		set["availability"] = avail
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), uid, set)
	if err != nil {
		logger.Errorf("[UpdateProfile] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	u.Password = ""
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": u})
}

// Mentors lists users that have at least one skill to teach.
func (h *Handler) Mentors(c *gin.Context) {
	mentors, err := h.users.Mentors(c.Request.Context())
	if err != nil {
		logger.Errorf("[Mentors] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	for i := range mentors {
		mentors[i].Password = ""
	}
	c.JSON(http.StatusOK, mentors)
}

// AllUsers lists everyone but the caller (the chat contact list).
func (h *Handler) AllUsers(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	users, err := h.users.AllExcept(c.Request.Context(), uid)
	if err != nil {
		logger.Errorf("[AllUsers] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// ---- skills ----

type addSkillReq struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Level string `json:"level"`
}

func (h *Handler) AddSkill(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req addSkillReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skill name and type are required"})
		return
	}
	if req.Type != model.SkillTeach && req.Type != model.SkillLearn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be teach or learn"})
		return
	}
	err := h.users.AddSkill(c.Request.Context(), uid, model.Skill{
		Name: req.Name, Type: req.Type, Level: req.Level,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Skill added successfully"})
}
