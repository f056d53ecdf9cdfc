// internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/auth"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin doctor secretary"`
}

// RegisterUser creates a clinic account and signs this device in.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.Session.Register(c.Request.Context(), req.FullName, req.Email, req.Password, req.Role)
	if errors.Is(err, auth.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	if err != nil {
		h.Logger.Printf("RegisterUser: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login signs this device in and reconciles with the account's remote record.
func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, token, err := h.Session.SignIn(c.Request.Context(), loginReq.Email, loginReq.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.Logger.Printf("Login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not sign in"})
		return
	}

	if err := h.Sync.Pull(c.Request.Context(), true); err != nil {
		h.Logger.Printf("Login: pull after sign in failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "status": h.Sync.Status()})
}

// Logout forgets the session of this device. Local data stays.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Session.SignOut(c.Request.Context()); err != nil {
		h.Logger.Printf("Logout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetCurrentUser returns the account this device is signed in with.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.Session.GetUser(c.Request.Context())
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// AccountStatus reports whether the signed-in account already has a remote
// record. A lookup failure answers exists=true so the UI never offers to
// create a second clinic over an unreachable one.
func (h *Handler) AccountStatus(c *gin.Context) {
	exists, err := h.Remote.Exists(c.Request.Context())
	if err != nil {
		h.Logger.Printf("AccountStatus: %v", err)
		c.JSON(http.StatusOK, gin.H{"exists": true, "error": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists, "error": false})
}
