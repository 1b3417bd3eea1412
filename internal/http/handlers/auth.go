package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/stationery/internal/auth"
	"github.com/stocktrack/stationery/internal/config"
	"github.com/stocktrack/stationery/internal/domain/user"
	"github.com/stocktrack/stationery/internal/http/middlewares"
	"github.com/stocktrack/stationery/internal/security"
)

// Keep the store interface small so tests can fake it easily.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, username, passwordHash, role string) (user.User, error)
	AdminExists(ctx context.Context) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type AuthHandler struct {
	users UserStore
	jwt   *auth.Manager
	log   *slog.Logger
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
		log:   log,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=admin buyer"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid username or password")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if security.CheckPassword(foundUser.Password, req.Password) != nil {
		// Rows written before hashing hold the raw password. When the
		// stored value is not a hash and matches byte-for-byte, accept
		// the login and upgrade the credential in place. The upgrade is
		// best-effort: the verification result already stands.
		if security.IsHash(foundUser.Password) || foundUser.Password != req.Password {
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid username or password")
			return
		}

		hash, hashErr := security.HashPassword(req.Password)

		if hashErr == nil {
			if upErr := h.users.UpdatePassword(cctx, foundUser.ID, hash); upErr != nil {
				h.log.Warn("password upgrade failed", "username", foundUser.Username, "err", upErr)
			}
		}
	}

	h.respondSession(ctx, http.StatusOK, "Login successful", foundUser)
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role := req.Role

	if role == "" {
		role = user.RoleBuyer
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Error creating user")
		return
	}

	u, err := h.users.Create(cctx, req.Username, hash, role)

	if err != nil {
		switch err {
		case user.ErrUsernameTaken:
			RespondConflict(ctx, "username_taken", "Username already exists")
		case user.ErrAdminExists:
			RespondForbidden(ctx, "admin_exists", "An admin account already exists")
		default:
			RespondInternal(ctx, "Error creating user")
		}
		return
	}

	h.respondSession(ctx, http.StatusCreated, "User created", u)
}

func (h *AuthHandler) AdminExists(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	exists, err := h.users.AdminExists(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not check admin account")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Me returns the identity carried by the bearer token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	username, okUser := middlewares.UsernameFromContext(ctx)
	role, okRole := middlewares.RoleFromContext(ctx)

	if !okUser || !okRole {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{"username": username, "role": role},
	})
}

func (h *AuthHandler) respondSession(ctx *gin.Context, status int, message string, u user.User) {
	token, err := h.jwt.GenerateAccessToken(strconv.FormatInt(u.ID, 10), u.Username, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(status, gin.H{
		"message": message,
		"user":    gin.H{"username": u.Username, "role": u.Role},
		"token":   token,
	})
}
