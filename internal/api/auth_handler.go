package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"wqsolutions/internal/api/middleware"
	"wqsolutions/internal/auth"
	"wqsolutions/internal/database"
)

const (
	loginLockThreshold = 5
	loginLockTTL       = 15 * time.Minute
)

// AuthHandler serves login, the current-account endpoint and superadmin user
// management.
type AuthHandler struct {
	db                    *gorm.DB
	authService           *auth.Service
	redis                 redis.UniversalClient
	logger                *slog.Logger
	loginRateLimitPerHour int
}

// NewAuthHandler builds the handler.
func NewAuthHandler(db *gorm.DB, authService *auth.Service, redisClient redis.UniversalClient, logger *slog.Logger, loginRateLimitPerHour int) *AuthHandler {
	return &AuthHandler{
		db:                    db,
		authService:           authService,
		redis:                 redisClient,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", req.Username))

	if h.redis != nil && h.loginRateLimitPerHour > 0 {
		rateKey := "rate:login:" + ip + ":" + strings.ToLower(req.Username) + ":" + time.Now().UTC().Format("2006010215")
		count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.loginRateLimitPerHour) {
			Fail(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		lockKey := "lock:login:" + strings.ToLower(req.Username)
		if locked, err := h.redis.Exists(ctx, lockKey).Result(); err == nil && locked > 0 {
			Fail(c, http.StatusTooManyRequests, "account temporarily locked")
			return
		}
	}

	var user database.User
	err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("login lookup failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
		h.recordLoginFailure(c, req.Username)
		Unauthorized(c)
		return
	}

	if !user.Active || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.recordLoginFailure(c, req.Username)
		Unauthorized(c)
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Role)
	if err != nil {
		logger.Error("sign token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("login ok", slog.Uint64("user_id", uint64(user.ID)))
	OK(c, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTTL().Seconds()),
		Role:        user.Role,
	})
}

func (h *AuthHandler) recordLoginFailure(c *gin.Context, username string) {
	if h.redis == nil {
		return
	}
	ctx := c.Request.Context()
	failKey := "fail:login:" + strings.ToLower(username)
	count, err := incrWithTTL(ctx, h.redis, failKey, loginLockTTL)
	if err != nil {
		return
	}
	if count >= loginLockThreshold {
		_ = h.redis.Set(ctx, "lock:login:"+strings.ToLower(username), 1, loginLockTTL).Err()
	}
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "account not found")
			return
		}
		Internal(c, "internal error")
		return
	}
	OK(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// ChangePassword updates the authenticated account's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		Unauthorized(c)
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Update("password_hash", hashed).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	OKMessage(c, "password changed", nil)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required"`
}

// CreateUser creates an admin-panel account. Superadmin only.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !auth.ValidRole(req.Role) {
		BadRequest(c, "invalid role")
		return
	}

	ctx := c.Request.Context()
	var existing database.User
	if err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err == nil {
		Conflict(c, "username already taken")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		Internal(c, "internal error")
		return
	}

	user := database.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
		Active:       true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	Created(c, "user created", user)
}

// ListUsers lists admin-panel accounts. Superadmin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var users []database.User
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at desc").
		Find(&users).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	OK(c, users)
}

type updateUserRequest struct {
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// UpdateUser changes an account's role, active flag or password. Superadmin
// only.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "internal error")
		return
	}

	updates := map[string]any{}
	if req.Role != nil {
		if !auth.ValidRole(*req.Role) {
			BadRequest(c, "invalid role")
			return
		}
		updates["role"] = *req.Role
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			Internal(c, "internal error")
			return
		}
		updates["password_hash"] = hashed
	}
	if len(updates) == 0 {
		BadRequest(c, "nothing to update")
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	if err := h.db.WithContext(ctx).First(&user, id).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	OKMessage(c, "user updated", user)
}

// DeleteUser removes an account. Superadmin only; self-deletion is refused.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	callerID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	if callerID == id {
		BadRequest(c, "cannot delete own account")
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&user).Error; err != nil {
		Internal(c, "internal error")
		return
	}
	OKMessage(c, "user deleted", nil)
}
