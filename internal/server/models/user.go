// Package models defines server-side data models persisted in the database.
package models

import (
	"slices"
	"strings"
	"time"
)

// User is a registered identity. Email is the subject carried in tokens.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash []byte
	Roles        []string
	CreatedAt    time.Time
}

// JoinRoles and SplitRoles convert between the role set and its stored
// comma-separated form.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func SplitRoles(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
