package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/domain/user"
	"github.com/verdantlab/planthub/internal/http/middlewares"
	"github.com/verdantlab/planthub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
	log        *slog.Logger
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
		log:        log,
	}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=1,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.Issue(u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// same code whether the email is unknown or the password is
		// wrong, so callers cannot enumerate accounts
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, "invalid_credentials", "Email or password is incorrect.", nil)
			return
		}

		// a store fault is not a bad credential
		if h.log != nil {
			h.log.ErrorContext(ctx.Request.Context(), "login user lookup failed", "err", err)
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Email or password is incorrect.", nil)
		return
	}

	token, err := h.jwt.Issue(foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}
