package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

const (
	// Максимальные длины для различных полей
	MaxIDLength       = 64
	MaxNameLength     = 200
	MaxMemoLength     = 256
	MinUsernameLength = 6
	MaxUsernameLength = 30
	MaxSymbolLength   = 7
)

var (
	idRegex        = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	mediaHashRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)
	symbolRegex    = regexp.MustCompile(`^[A-Z]{1,7}$`)
	usernameRegex  = regexp.MustCompile(`^[A-Za-z0-9.]+$`)
)

// ValidateID проверяет идентификаторы сущностей (entry, level, category, profile)
func ValidateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s cannot exceed %d characters", field, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%s may only contain lowercase letters, digits, '.', '_' and '-'", field)
	}
	return nil
}

// ValidateName проверяет отображаемое имя категории или уровня
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateMediaHash checks a lowercase hex sha256 digest. Empty is allowed.
func ValidateMediaHash(hash string) error {
	if hash == "" {
		return nil
	}
	if !mediaHashRegex.MatchString(hash) {
		return fmt.Errorf("media hash must be 64 lowercase hex characters")
	}
	return nil
}

// ValidateUsername: 6-30 chars, alphanumerics and dots, no leading,
// trailing or doubled dots.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username cannot be less than %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot be more than %d characters", MaxUsernameLength)
	}
	if strings.HasPrefix(username, ".") {
		return fmt.Errorf("username cannot start with a dot")
	}
	if strings.HasSuffix(username, ".") {
		return fmt.Errorf("username cannot end with a dot")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username is limited to alphanumerics (A-Z a-z 0-9) and dots")
	}
	if strings.Contains(username, "..") {
		return fmt.Errorf("username cannot contain double dots")
	}
	return nil
}

// ValidateSymbol проверяет код токена (например, TON или EOS)
func ValidateSymbol(symbol string) error {
	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("symbol must be 1-%d uppercase letters", MaxSymbolLength)
	}
	return nil
}

// ValidateMemo ограничивает длину memo перевода
func ValidateMemo(memo string) error {
	if len(memo) > MaxMemoLength {
		return fmt.Errorf("memo cannot exceed %d characters", MaxMemoLength)
	}
	return nil
}

// NormalizeWalletAddress parses a user-friendly TON address and
// returns its canonical user-friendly representation.
func NormalizeWalletAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("wallet address cannot be empty")
	}
	parsed, err := address.ParseAddr(addr)
	if err != nil {
		return "", fmt.Errorf("invalid wallet address: %w", err)
	}
	return parsed.String(), nil
}
