package auth

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// AuditLogger records authentication events. It may be nil.
type AuditLogger interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email           string `json:"email" form:"email"`
	Name            string `json:"name" form:"name"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"omitempty,eqfield=Password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

func newUserResponse(user *entities.User) UserResponse {
	resp := UserResponse{ID: user.ID, Email: user.Email, Name: user.Name}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	audit          AuditLogger
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, auditLogger AuditLogger, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		audit:          auditLogger,
	}
}

// RegisterRoutes registers authentication routes on group.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Register creates an account. It does not log the user in.
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	userID, err := ac.service.Register(req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	ac.logAuth(c, userID, audit.ActionRegister, true)

	c.JSON(http.StatusCreated, gin.H{
		"id":    userID,
		"email": strings.TrimSpace(req.Email),
		"name":  strings.TrimSpace(req.Name),
	})
}

// Login verifies credentials and binds the user to the session.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email); !allowed {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", fmt.Sprint(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apperr.Response{
			Error: "too many login attempts",
			Code:  "rate_limited",
		})
		return
	}

	user, err := ac.service.Verify(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
			ac.logAuth(c, 0, audit.ActionLogin, false)
		}
		respondError(c, err)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Email)

	if err := ac.sessionManager.StartSession(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	ac.logAuth(c, user.ID, audit.ActionLogin, true)

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// Logout ends the session. Logging out twice is harmless.
func (ac *AuthController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	userID, wasLoggedIn := ac.sessionManager.CurrentUser(ctx)

	if err := ac.sessionManager.EndSession(ctx); err != nil {
		respondError(c, err)
		return
	}
	if wasLoggedIn {
		ac.logAuth(c, userID, audit.ActionLogout, true)
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the session user.
func (ac *AuthController) Me(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := ac.sessionManager.RequireAuthenticated(ctx); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": ac.sessionManager.SessionData(ctx)})
}

func (ac *AuthController) logAuth(c *gin.Context, userID uint, action string, success bool) {
	if ac.audit == nil {
		return
	}
	ac.audit.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func respondError(c *gin.Context, err error) {
	status, body := apperr.HTTPResponse(err)
	if status >= http.StatusInternalServerError {
		log.Printf("auth request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, body)
}
