package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skillswap/data/database/mgo/mongoutil"
	"skillswap/global"
	"skillswap/logger"
	"skillswap/middleware"
	"skillswap/module/match"
	messagehandler "skillswap/module/message"
	messagestore "skillswap/module/message/store"
	sessionhandler "skillswap/module/session"
	sessionstore "skillswap/module/session/store"
	userhandler "skillswap/module/user"
	userstore "skillswap/module/user/store"
	"skillswap/service/chat"
	storageredis "skillswap/service/storage/redis"
	"skillswap/tools/ids"
	"skillswap/tools/security"
)

func main() {
	cfg := global.Load()
	ids.SetNodeID(cfg.NodeID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoCli, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:         cfg.MongoURI,
		Database:    cfg.MongoDatabase,
		MaxPoolSize: cfg.MongoPoolSize,
		MaxRetry:    cfg.MongoMaxRetry,
	})
	if err != nil {
		logger.Errorf("mongo connect: %v", err)
		panic(err)
	}
	db := mongoCli.GetDB()

	if err := storageredis.InitRedis(storageredis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		// presence mirroring degrades to in-memory only
		logger.Infof("redis unavailable, presence mirror disabled: %v", err)
	}

	users := userstore.NewUserStore(db)
	messages := messagestore.NewMessageStore(db)
	sessions := sessionstore.NewSessionStore(db)

	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Errorf("user indexes: %v", err)
	}
	if err := messages.EnsureIndexes(ctx); err != nil {
		logger.Errorf("message indexes: %v", err)
	}
	// no presence entry survives a restart, so persisted flags are stale
	if err := users.ResetAllOnline(ctx); err != nil {
		logger.Errorf("reset online flags: %v", err)
	}

	jwtOpts := security.DefaultOptions([]byte(cfg.JWTSecret))
	middleware.ConfigAuth(jwtOpts)

	userH := userhandler.NewHandler(users, jwtOpts, userhandler.NewGoogleVerifier(cfg.GoogleClientID))
	messageH := messagehandler.NewHandler(messages)
	sessionH := sessionhandler.NewHandler(sessions, users)
	matchH := match.NewHandler(users)
	hub := chat.NewServer(users, messages, strconv.FormatInt(cfg.NodeID, 10))

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "SkillSwap API is running...")
	})
	r.GET("/ws", hub.HandleWS)

	auth := r.Group("/api/auth")
	middleware.POST(auth, "/register", userH.Register, middleware.RouteOpt{})
	middleware.POST(auth, "/login", userH.Login, middleware.RouteOpt{})
	middleware.POST(auth, "/google-login", userH.GoogleLogin, middleware.RouteOpt{})
	middleware.GET(auth, "/me", userH.Me, middleware.RouteOpt{IsAuth: true})

	usersG := r.Group("/api/users")
	middleware.GET(usersG, "/me", userH.Me, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(usersG, "/update", userH.UpdateProfile, middleware.RouteOpt{IsAuth: true})
	middleware.GET(usersG, "/mentors", userH.Mentors, middleware.RouteOpt{IsAuth: true})
	middleware.GET(usersG, "/all", userH.AllUsers, middleware.RouteOpt{IsAuth: true})

	middleware.POST(r, "/api/skills", userH.AddSkill, middleware.RouteOpt{IsAuth: true})

	msgs := r.Group("/api/messages")
	middleware.POST(msgs, "", messageH.Send, middleware.RouteOpt{IsAuth: true})
	middleware.GET(msgs, "/:userId", messageH.History, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(msgs, "/:userId/read", messageH.MarkRead, middleware.RouteOpt{IsAuth: true})

	middleware.GET(r, "/api/match/matches", matchH.Matches, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/api/ai/aimatches", matchH.AiMatches, middleware.RouteOpt{IsAuth: true})

	sess := r.Group("/api/session")
	middleware.GET(sess, "", sessionH.List, middleware.RouteOpt{IsAuth: true})
	middleware.POST(sess, "", sessionH.Create, middleware.RouteOpt{IsAuth: true})
	middleware.POST(sess, "/accept", sessionH.Accept, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(sess, "/complete", sessionH.Complete, middleware.RouteOpt{IsAuth: true})
	middleware.POST(sess, "/message", sessionH.SendMessage, middleware.RouteOpt{IsAuth: true})

	logger.Infof("SkillSwap listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Errorf("server exit: %v", err)
	}
}
