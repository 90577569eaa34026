package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/formation-api/internal/middleware"
	"github.com/noah-isme/formation-api/internal/models"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
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

func actorFromContext(c *gin.Context) (models.Actor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Actor{}, appErrors.ErrUnauthenticated
	}
	return models.ActorOf(claims), nil
}

func principalFromContext(c *gin.Context) (models.Principal, error) {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil, appErrors.ErrUnauthenticated
	}
	principal, ok := value.(models.Principal)
	if !ok {
		return nil, appErrors.ErrUnauthenticated
	}
	return principal, nil
}

// idParam reads a route id. Ids that cannot exist are reported as not found.
func idParam(c *gin.Context, name string) (string, error) {
	value := c.Param(name)
	if _, err := uuid.Parse(value); err != nil {
		return "", appErrors.ErrNotFound
	}
	return value, nil
}

// bindJSON decodes the body and runs the validator over it.
func bindJSON(c *gin.Context, validate *validator.Validate, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Validation(err, "invalid request body")
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(dst); err != nil {
		return appErrors.Validation(err, "")
	}
	return nil
}
