package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jotbox/jotbox/internal/middleware"
)

type RouterDeps struct {
	Auth             *AuthHandler
	OAuth            *OAuthHandler
	Notes            *NoteHandler
	JWTSecret        []byte
	OTPRequestWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/otp/request", middleware.RateLimit(deps.OTPRequestWindow), deps.Auth.RequestOTP)
	api.POST("/auth/otp/verify", deps.Auth.VerifyOTP)

	api.GET("/auth/oauth/:provider", deps.OAuth.AuthURL)
	api.GET("/auth/oauth/:provider/callback", deps.OAuth.Callback)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/auth/me", deps.Auth.Me)
	authGroup.POST("/notes", deps.Notes.Create)
	authGroup.GET("/notes", deps.Notes.List)
	authGroup.DELETE("/notes/:id", deps.Notes.Delete)
}
