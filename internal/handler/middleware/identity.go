package middleware

import (
	"net/http"

	"fieldservice/internal/handler/httperr"
	"fieldservice/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDHeader carries the caller identity set by the API gateway in front of
// this service. Authentication itself happens upstream.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user header"), "Missing "+UserIDHeader+" header", nil)
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.Wrap(err, "invalid user header"), "Invalid "+UserIDHeader+" header", nil)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
