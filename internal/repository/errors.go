package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateShortCode = errors.New("short code already taken")
	ErrDuplicateURL       = errors.New("url already shortened by this user")
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated unique constraint name, or "".
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return ""
	}
	return pqErr.Constraint
}
