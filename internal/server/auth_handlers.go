package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minimalprod/erpctl/internal/auth"
	"github.com/minimalprod/erpctl/internal/models"
)

const invalidCredentials = "Invalid credentials"

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PolicyDetail is a policy as returned to clients
type PolicyDetail struct {
	Tag        string `json:"tag"`
	Permission string `json:"permission"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	Username string         `json:"username"`
	Roles    []string       `json:"roles"`
	Policies []PolicyDetail `json:"policies"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string `json:"token"`
	UserDetail
}

func newUserDetail(user *models.User) UserDetail {
	policies := user.Policies()
	details := make([]PolicyDetail, len(policies))
	for i, p := range policies {
		details[i] = PolicyDetail{Tag: p.Tag, Permission: p.Permission}
	}
	return UserDetail{
		Username: user.Username,
		Roles:    user.RoleNames(),
		Policies: details,
	}
}

// login authenticates with username and password. Unknown users, inactive
// users and wrong passwords all get the same 401.
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := models.FindUserByUsername(s.db, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	if !user.Active {
		s.logger.Info().Str("username", user.Username).Msg("Login attempt by inactive user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	detail := newUserDetail(user)
	token, _, err := auth.GenerateToken(user.Username, detail.Roles, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: token, UserDetail: detail})
}

// logout revokes the token that authenticated the request
func (s *Server) logout(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	revoked := &models.RevokedToken{
		TokenID:   sessionData.TokenID,
		Username:  sessionData.Username,
		ExpiresAt: sessionData.ExpiresAt,
	}
	if err := s.db.Create(revoked).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if n, err := models.PurgeExpiredRevocations(s.db, s.now()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to purge expired revocations")
	} else if n > 0 {
		s.logger.Debug().Int64("count", n).Msg("Purged expired revocations")
	}

	s.logger.Info().Str("username", sessionData.Username).Msg("User logged out")

	c.Status(http.StatusNoContent)
}

func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := models.FindUserByUsername(s.db, sessionData.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", sessionData.Username).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, newUserDetail(user))
}
