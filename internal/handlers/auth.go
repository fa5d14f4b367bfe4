package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"marketplace-portal/internal/auth"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	users      database.UserStore
	issuer     *auth.TokenIssuer
	bcryptCost int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users database.UserStore, issuer *auth.TokenIssuer, bcryptCost int) *AuthHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{users: users, issuer: issuer, bcryptCost: bcryptCost}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		respondBadRequest(c, "username must be at least 3 characters")
		return
	}
	if len(req.Password) < 8 {
		respondBadRequest(c, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Username already taken",
			})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.issuer.Generate(user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login verifies credentials and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, err := h.users.ByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.rejectCredentials(c)
			return
		}
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.rejectCredentials(c)
		return
	}

	if err := h.users.RecordLogin(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issuer.Generate(user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, authResponse{Token: token, User: user})
}

// rejectCredentials answers the same way for unknown users and wrong
// passwords so usernames cannot be probed.
func (h *AuthHandler) rejectCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Invalid username or password",
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.ByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}
