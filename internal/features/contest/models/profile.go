package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// Profile mirrors the externally managed user profile. Winnings is the only
// field this engine changes.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	UsernameHash string `json:"username_hash"`
	// Account is the identity allowed to act for this profile.
	Account  string `json:"account"`
	Active   bool   `json:"active"`
	Winnings int64  `json:"winnings"`
}

// HashUsername returns the hex sha256 of username.
func HashUsername(username string) string {
	sum := sha256.Sum256([]byte(username))
	return hex.EncodeToString(sum[:])
}

// Caller is the identity an operation runs on behalf of.
type Caller struct {
	Account string
	Admin   bool
}

// Controls reports whether the caller may act for p.
func (c Caller) Controls(p Profile) bool {
	return c.Account != "" && c.Account == p.Account
}
