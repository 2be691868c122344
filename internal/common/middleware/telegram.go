package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/logger"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	callerKey      = "caller"
)

// Caller is the authenticated Telegram user behind a request.
type Caller struct {
	TelegramID int64
	Username   string
	Admin      bool
}

// Account is the linked account name profiles are keyed against.
func (c Caller) Account() string {
	return strconv.FormatInt(c.TelegramID, 10)
}

// TelegramAuth validates Mini App init data signed with botToken and stores
// the Caller in the gin context. ttl 0 disables the expiry check.
func TelegramAuth(botToken string, ttl time.Duration, adminIDs []int64) gin.HandlerFunc {
	log := logger.Component("telegram_auth")
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			Abort(c, errors.NewUnauthorizedError("telegram init data required"))
			return
		}

		if botToken == "" {
			log.Error().Msg("BOT_TOKEN is not configured")
			Abort(c, errors.New(errors.ErrCodeInternal, "Server configuration error"))
			return
		}

		if err := initdata.Validate(raw, botToken, ttl); err != nil {
			log.Debug().Err(err).Msg("Init data validation failed")
			Abort(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			Abort(c, errors.NewValidationError("init_data", err.Error()))
			return
		}
		if parsed.User.ID == 0 {
			Abort(c, errors.NewUnauthorizedError("init data carries no user"))
			return
		}

		_, isAdmin := admins[parsed.User.ID]
		c.Set(callerKey, Caller{
			TelegramID: parsed.User.ID,
			Username:   parsed.User.Username,
			Admin:      isAdmin,
		})
		c.Next()
	}
}

// CallerFrom returns the Caller stored by TelegramAuth.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// SetCaller stores a Caller directly; used by trusted internal routes and tests.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(callerKey, caller)
}
