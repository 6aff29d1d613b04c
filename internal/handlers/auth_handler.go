package handlers

import (
	"net/http"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

func setTokenCookie(c *gin.Context, issuer *helpers.TokenIssuer, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, int(issuer.TTL().Seconds()), "/", "", secure, true)
}

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		user, err := u.Signup(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		message := "Signup successful"
		if user.OrganizerStatus == models.OrganizerPending {
			message = "Signup successful. Organizer access is pending admin approval"
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user.Public(), message))
	}
}

func Login(u *services.UserService, issuer *helpers.TokenIssuer, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RegNumber string `json:"regNumber" binding:"required"`
			Password  string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("regNumber and password are required"))
			return
		}

		user, err := u.Login(c.Request.Context(), req.RegNumber, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := issuer.Issue(user.RegNumber, user.Role, user.FullName())
		if err != nil {
			respondError(c, err)
			return
		}
		setTokenCookie(c, issuer, token, secure)

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"token": token,
			"user":  user.Public(),
		}, "Login successful"))
	}
}

func Logout(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("access_token", "", -1, "/", "", secure, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out"))
	}
}

func AdminLogin(a *services.AdminService, issuer *helpers.TokenIssuer, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("username and password are required"))
			return
		}

		username, err := a.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := issuer.Issue(username, helpers.RoleAdmin, username)
		if err != nil {
			respondError(c, err)
			return
		}
		setTokenCookie(c, issuer, token, secure)

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"token":    token,
			"username": username,
		}, "Admin login successful"))
	}
}
