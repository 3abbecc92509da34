package restapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler checks the shared dashboard password.
type AuthHandler struct {
	password string
}

func NewAuthHandler(password string) *AuthHandler {
	return &AuthHandler{password: password}
}

type authRequest struct {
	Password string `json:"password"`
}

// Login validates the password.
// POST /api/auth
func (h *AuthHandler) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Authentication failed"})
		return
	}
	if h.password == "" {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Authentication not configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
