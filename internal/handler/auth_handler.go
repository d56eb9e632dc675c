package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jotbox/jotbox/internal/pkg/response"
	"github.com/jotbox/jotbox/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type otpRequest struct {
	Email    string `json:"email"`
	Otp      string `json:"otp"`
	FullName string `json:"full_name"`
	Dob      string `json:"dob"`
}

func (r *otpRequest) signupProfile(c *gin.Context) *service.SignupProfile {
	if c.Query("mode") != "signup" {
		return nil
	}
	return &service.SignupProfile{FullName: r.FullName, DateOfBirth: r.Dob}
}

// RequestOTP issues a code for signin (?mode omitted) or signup
// (?mode=signup, which additionally validates the profile fields). When
// expose_dev_code is configured the code is echoed back as dev_otp.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	devCode, err := h.auth.RequestCode(c.Request.Context(), req.Email, req.signupProfile(c))
	if err != nil {
		handleError(c, err)
		return
	}
	body := gin.H{"ok": true, "message": "OTP sent"}
	if devCode != "" {
		body["dev_otp"] = devCode
	}
	response.Success(c, body)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	if req.Email == "" || req.Otp == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "email and otp are required")
		return
	}
	user, token, err := h.auth.VerifyCode(c.Request.Context(), req.Email, req.Otp, req.signupProfile(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}
