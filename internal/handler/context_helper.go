package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/middleware"
	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// principalFromContext resolves the authenticated caller. The JWT
// middleware guarantees claims are present on protected routes; a miss
// here means the route was wired without it.
func principalFromContext(c *gin.Context) (models.Principal, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Principal{}, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	return claims.Principal(), nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}
