package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"repairshop/internal/domain"
	"repairshop/internal/http/middleware"
	"repairshop/internal/repositories"
	"repairshop/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminFinder loads an admin account and its bcrypt hash by email.
type AdminFinder interface {
	FindByLogin(ctx context.Context, email string) (repositories.AdminUser, string, error)
}

type AuthHandler struct {
	Users  AdminFinder
	Secret string
	Now    func() time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		RespondDomainError(c, domain.ValidationError{Msg: "email and password are required"})
		return
	}

	user, hash, err := h.Users.FindByLogin(c.Request.Context(), req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			badCredentials(c)
			return
		}
		RespondDomainError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		badCredentials(c)
		return
	}
	if !strings.EqualFold(user.Status, "active") {
		respondError(c, http.StatusForbidden, "forbidden", "account is disabled", nil)
		return
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	token, err := middleware.IssueToken(h.Secret, user.ID, user.Role, now)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "could not sign token", Err: err})
		return
	}

	utils.LogEvent(requestID(c), "auth", "login", "user_id="+strconv.FormatInt(user.ID, 10))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func badCredentials(c *gin.Context) {
	respondError(c, http.StatusUnauthorized, "unauthorized", "wrong email or password", nil)
}
