package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == entity.RoleAdmin
}

// requireUser writes a 401 and returns false when no user is authenticated
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// paramUUID parses a path parameter, writing a 400 on failure
func paramUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// paramIndex parses a non-negative integer path parameter
func paramIndex(c *gin.Context, name string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(name))
	if err != nil || idx < 0 {
		response.BadRequest(c, "Invalid line index")
		return 0, false
	}
	return idx, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	return pagination.FromQuery(c.DefaultQuery("page", "1"), c.DefaultQuery("per_page", "15"))
}
