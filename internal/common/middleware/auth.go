package middleware

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contest-backend/internal/common/errors"
)

const EscrowTokenHeader = "X-Escrow-Token"

// ParseAdminIDs разбирает список ADMIN_IDS, пропуская некорректные значения
func ParseAdminIDs(raw []string) []int64 {
	var ids []int64
	for _, s := range raw {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CallerFrom(c); !ok {
			Abort(c, errors.NewUnauthorizedError("telegram init data required"))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			Abort(c, errors.NewUnauthorizedError("telegram init data required"))
			return
		}
		if !caller.Admin {
			Abort(c, errors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// RequireEscrowToken guards the deposit notification endpoint used by the
// external escrow service. An empty token rejects every request.
func RequireEscrowToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(EscrowTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			Abort(c, errors.NewUnauthorizedError("invalid escrow token"))
			return
		}
		c.Next()
	}
}
