package service

import "contest-backend/internal/common/errors"

// Ошибки сервиса конкурсов. Сравнивать через errors.Is.
var (
	ErrNotAccountOwner = errors.New(errors.ErrCodeUnauthorized, "caller does not control the profile account")
	ErrAdminRequired   = errors.New(errors.ErrCodeForbidden, "admin access required")
	ErrProfileInactive = errors.New(errors.ErrCodeForbidden, "profile is not active")

	ErrProfileNotFound  = errors.New(errors.ErrCodeNotFound, "profile not found")
	ErrCategoryNotFound = errors.New(errors.ErrCodeNotFound, "category not found")
	ErrLevelNotFound    = errors.New(errors.ErrCodeNotFound, "level not found")
	ErrContestNotFound  = errors.New(errors.ErrCodeNotFound, "contest not found")
	ErrEntryNotFound    = errors.New(errors.ErrCodeNotFound, "entry not found")

	ErrEntryExists      = errors.New(errors.ErrCodeConflict, "entry id already exists")
	ErrCategoryExists   = errors.New(errors.ErrCodeConflict, "category id already exists")
	ErrLevelExists      = errors.New(errors.ErrCodeConflict, "level id already exists")
	ErrUsernameTaken    = errors.New(errors.ErrCodeConflict, "username belongs to another profile")
	ErrAlreadyBlocked   = errors.New(errors.ErrCodeConflict, "entry is already blocked")
	ErrCategoryArchived = errors.New(errors.ErrCodeValidation, "category is archived")
	ErrLevelArchived    = errors.New(errors.ErrCodeValidation, "level is archived")
	ErrCurrencyMismatch = errors.New(errors.ErrCodeValidation, "payment symbol does not match the configured currency")
	ErrAmountOverflow   = errors.New(errors.ErrCodeValidation, "payment would overflow the entry escrow")

	ErrLiveEntryExists     = errors.New(errors.ErrCodePrecondition, "a live entry already exists for this level")
	ErrEntryAssigned       = errors.New(errors.ErrCodePrecondition, "entry cannot be refunded once it has been assigned to a contest")
	ErrNothingToRefund     = errors.New(errors.ErrCodePrecondition, "entry does not have any funds to refund")
	ErrEntryNotActivated   = errors.New(errors.ErrCodePrecondition, "entry has not been activated")
	ErrEntryBlocked        = errors.New(errors.ErrCodePrecondition, "entry is blocked")
	ErrOutsideVotingWindow = errors.New(errors.ErrCodePrecondition, "contest is not accepting votes")
	ErrAlreadyVoted        = errors.New(errors.ErrCodePrecondition, "you've already voted in this contest")

	ErrConfigMissing = errors.New(errors.ErrCodeInternal, "global config is not initialised")
)

func detail(key string, value interface{}) map[string]interface{} {
	return map[string]interface{}{key: value}
}
