package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/user"
)

type authResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// registerHandler creates the account and logs it in.
func registerHandler(users *user.Service, gw *auth.Gateway, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.RegisterRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		u, err := users.Register(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		token, err := gw.IssueToken(u)
		if err != nil {
			httpx.Fail(c, log, apperr.Internal(err))
			return
		}
		httpx.OK(c, http.StatusCreated, "User registered successfully", authResponse{User: u, Token: token})
	}
}

func loginHandler(users *user.Service, gw *auth.Gateway, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.LoginRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		u, err := users.Authenticate(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		token, err := gw.IssueToken(u)
		if err != nil {
			httpx.Fail(c, log, apperr.Internal(err))
			return
		}
		log.WithFields(logrus.Fields{"rid": httpx.RID(c), "user_id": u.ID}).Info("user logged in")
		httpx.OK(c, http.StatusOK, "Login successful", authResponse{User: u, Token: token})
	}
}

func meHandler(users *user.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Get(c.Request.Context(), auth.MustIdentity(c).ID)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "", gin.H{"user": u})
	}
}

func updateProfileHandler(users *user.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.UpdateProfileRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		u, err := users.UpdateProfile(c.Request.Context(), auth.MustIdentity(c).ID, in)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Profile updated successfully", gin.H{"user": u})
	}
}

func changePasswordHandler(users *user.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.ChangePasswordRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		if err := users.ChangePassword(c.Request.Context(), auth.MustIdentity(c).ID, in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Password changed successfully", nil)
	}
}
