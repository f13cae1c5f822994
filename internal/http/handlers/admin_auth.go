package handlers

import (
	"net/http"

	"bustiming/internal/domain"
	"bustiming/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/admin/login
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondDomainError(c, domain.ValidationError{Msg: "username and password are required"})
		return
	}

	res, err := a.Auth().Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"admin":     res.Admin,
	})
}

// POST /api/admin/setup
func (a *API) Setup(c *gin.Context) {
	created, err := a.Auth().EnsureDefaultAdmin(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	msg := "Admin already exists"
	if created {
		msg = "Default admin created"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "created": created, "message": msg})
}

// GET /api/admin/profile
func (a *API) Profile(c *gin.Context) {
	id, ok := middleware.CurrentAdmin(c)
	if !ok {
		RespondDomainError(c, domain.AuthError{Kind: domain.InvalidToken})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "admin": id})
}
