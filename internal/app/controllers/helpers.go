package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rollbook/rollbook/internal/app/auth"
	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/models/dto"
)

// actorFromContext builds the policy actor from the identity the auth
// middleware stored on the request context.
func actorFromContext(ctx *gin.Context) (auth.Actor, bool) {
	userID, okID := ctx.Get("userID")
	roleType, okRole := ctx.Get("roleType")
	if !okID || !okRole {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return auth.Actor{}, false
	}

	return auth.Actor{
		ID:   userID.(int64),
		Role: models.RoleType(roleType.(string)),
	}, true
}

// parseIDParam parses a positive int64 path parameter, writing the 400
// response itself on failure.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}
