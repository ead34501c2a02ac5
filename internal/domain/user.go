package domain

import (
	"fmt"
	"time"
)

// User is the profile of an authenticated person owning wallets.
type User struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Email     string
	Image     string
}

// Authentication errors
var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrValidation)
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrValidation)
)
