package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shinasport/terminal-booking-backend/internal/config"
	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/middleware"
	"github.com/shinasport/terminal-booking-backend/internal/models"
	"github.com/shinasport/terminal-booking-backend/internal/services"
	"github.com/shinasport/terminal-booking-backend/internal/utils"
	"github.com/shinasport/terminal-booking-backend/pkg/jwt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService    *jwt.Service
	authService   *services.AuthService
	users         *database.UserRepository
	refreshTokens *database.RefreshTokenRepository
	config        *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	authService *services.AuthService,
	users *database.UserRepository,
	refreshTokens *database.RefreshTokenRepository,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		jwtService:    jwtService,
		authService:   authService,
		users:         users,
		refreshTokens: refreshTokens,
		config:        cfg,
	}
}

// RegisterRequest represents the request to register a new account
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest represents a credential pair. The username field also accepts
// the account's email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response after a successful login
type LoginResponse struct {
	Access    string          `json:"access"`
	Refresh   string          `json:"refresh"`
	ExpiresIn int             `json:"expires_in_seconds"`
	User      models.UserView `json:"user"`
}

// RefreshRequest represents the request to exchange a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// LogoutRequest represents the request to end a session. Without logoutAll
// only the supplied refresh token is revoked.
type LogoutRequest struct {
	Refresh   string `json:"refresh"`
	LogoutAll bool   `json:"logoutAll"`
}

// UpdateUserRequest represents the admin request to update a user. Only the
// fields present in the body are changed.
type UpdateUserRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"displayName"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if fields := validateRegistration(&req); len(fields) > 0 {
		validationError(c, fields)
		return
	}

	user, profile, err := h.authService.Register(req.Username, req.Email, req.Password, req.DisplayName)
	if err != nil {
		var fieldErrs services.FieldErrors
		if errors.As(err, &fieldErrs) {
			validationError(c, fieldErrs)
			return
		}
		log.Printf("Failed to register user: %v", err)
		internalError(c, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, models.ComposeUserView(user, profile))
}

func validateRegistration(req *RegisterRequest) map[string]string {
	fields := map[string]string{}

	if len(req.Username) < 3 {
		fields["username"] = "Username must be at least 3 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		fields["email"] = "Enter a valid email address"
	}
	if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}

	return fields
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Username and password are required",
		})
		return
	}

	user, profile, err := h.authService.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid username or password",
			})
			return
		}
		log.Printf("Login failed for %q: %v", req.Username, err)
		internalError(c, "Failed to log in")
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Username, profile.Role)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		internalError(c, "Failed to generate tokens")
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		log.Printf("Failed to generate refresh token: %v", err)
		internalError(c, "Failed to generate tokens")
		return
	}

	deviceInfo := utils.ParseUserAgent(utils.GetUserAgent(c))
	err = h.refreshTokens.StoreRefreshToken(
		user.ID,
		refreshToken,
		utils.GetRealIP(c),
		utils.GetUserAgent(c),
		deviceInfo.DeviceType,
		time.Now().Add(h.config.JWT.RefreshTokenExpiry),
	)
	if err != nil {
		// The session still works without the stored metadata; log and move on
		log.Printf("Failed to store refresh token: %v", err)
	}

	c.JSON(http.StatusOK, LoginResponse{
		Access:    accessToken,
		Refresh:   refreshToken,
		ExpiresIn: int(h.config.JWT.AccessTokenExpiry.Seconds()),
		User:      models.ComposeUserView(user, profile),
	})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Refresh token is required",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	valid, err := h.refreshTokens.IsRefreshTokenValid(claims.UserID, req.Refresh)
	if err != nil {
		log.Printf("Failed to check refresh token: %v", err)
		internalError(c, "Failed to refresh token")
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Refresh token has been revoked",
		})
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		log.Printf("Failed to load user for refresh: %v", err)
		internalError(c, "Failed to refresh token")
		return
	}
	if user == nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Account is no longer active",
		})
		return
	}

	profile, err := h.users.GetOrCreateProfile(user.ID)
	if err != nil {
		log.Printf("Failed to load profile for refresh: %v", err)
		internalError(c, "Failed to refresh token")
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Username, profile.Role)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		internalError(c, "Failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":             accessToken,
		"expires_in_seconds": int(h.config.JWT.AccessTokenExpiry.Seconds()),
	})
}

// Logout handles POST /api/auth/logout. Revokes the supplied refresh token,
// or every token the user holds when logoutAll is set.
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if req.LogoutAll {
		if err := h.refreshTokens.RevokeAllForUser(userCtx.UserID); err != nil {
			log.Printf("Failed to revoke tokens for user %s: %v", userCtx.UserID, err)
			internalError(c, "Failed to log out")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out from all devices"})
		return
	}

	if req.Refresh == "" {
		fieldError(c, "refresh", "Refresh token is required unless logoutAll is set")
		return
	}

	if err := h.refreshTokens.RevokeRefreshToken(userCtx.UserID, req.Refresh); err != nil {
		// An unknown or already revoked token is not an error to the caller
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("Failed to revoke refresh token for user %s: %v", userCtx.UserID, err)
			internalError(c, "Failed to log out")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.users.GetUserByID(userCtx.UserID)
	if err != nil {
		log.Printf("Failed to load current user: %v", err)
		internalError(c, "Failed to load user")
		return
	}
	if user == nil {
		notFound(c, "user")
		return
	}

	profile, err := h.users.GetOrCreateProfile(user.ID)
	if err != nil {
		log.Printf("Failed to load current user profile: %v", err)
		internalError(c, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, models.ComposeUserView(user, profile))
}

// ListUsers handles GET /api/auth/users (admin only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers()
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		internalError(c, "Failed to list users")
		return
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		profile, err := h.users.GetOrCreateProfile(users[i].ID)
		if err != nil {
			log.Printf("Failed to load profile for user %s: %v", users[i].ID, err)
			internalError(c, "Failed to list users")
			return
		}
		views = append(views, models.ComposeUserView(&users[i], profile))
	}

	c.JSON(http.StatusOK, views)
}

// UpdateUser handles PATCH /api/auth/users/:id (admin only)
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "user")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 {
			fieldError(c, "username", "Username must be at least 3 characters")
			return
		}
		if err := h.users.UpdateUsername(userID, username); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				notFound(c, "user")
				return
			}
			if database.IsUniqueViolation(err) {
				fieldError(c, "username", "Username already taken")
				return
			}
			log.Printf("Failed to update username: %v", err)
			internalError(c, "Failed to update user")
			return
		}
	}

	if req.DisplayName != nil {
		if err := h.users.UpdateDisplayName(userID, strings.TrimSpace(*req.DisplayName)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				notFound(c, "user")
				return
			}
			log.Printf("Failed to update display name: %v", err)
			internalError(c, "Failed to update user")
			return
		}
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		log.Printf("Failed to reload user: %v", err)
		internalError(c, "Failed to update user")
		return
	}
	if user == nil {
		notFound(c, "user")
		return
	}

	profile, err := h.users.GetOrCreateProfile(userID)
	if err != nil {
		log.Printf("Failed to reload profile: %v", err)
		internalError(c, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, models.ComposeUserView(user, profile))
}

// DeleteUser handles DELETE /api/auth/users/:id (admin only). The user's
// bookings are kept and detached from the account.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, "user")
		return
	}

	if err := h.users.DeleteUser(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "user")
			return
		}
		log.Printf("Failed to delete user: %v", err)
		internalError(c, "Failed to delete user")
		return
	}

	// Outstanding sessions must not survive the account
	if err := h.refreshTokens.RevokeAllForUser(userID); err != nil {
		log.Printf("Failed to revoke tokens for deleted user %s: %v", userID, err)
	}

	c.Status(http.StatusNoContent)
}
