package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidWalletName  = fmt.Errorf("%w: invalid wallet name", ErrValidation)
	ErrAmountTooLarge     = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrTooManyDecimals    = fmt.Errorf("%w: amount has too many decimal places", ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long", ErrValidation)
	ErrUnsupportedImage   = fmt.Errorf("%w: image must be an http(s) URL or a data: URI", ErrValidation)
)

// Validation constants
const (
	MaxWalletNameLength  = 100
	MaxCategoryLength    = 64
	MaxDescriptionLength = 1000
	MaxAmount            = "1000000000000" // 1 trillion
	MaxAmountScale       = 4
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateWalletName validates a wallet display name.
func ValidateWalletName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidWalletName)
	}

	if utf8.RuneCountInString(name) > MaxWalletNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidWalletName, MaxWalletNameLength)
	}

	return nil
}

// ValidateAmount validates a transaction amount. Non-positive amounts are
// rejected, never clamped.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	if !amount.Equal(amount.Round(MaxAmountScale)) {
		return fmt.Errorf("%w: at most %d allowed", ErrTooManyDecimals, MaxAmountScale)
	}

	return nil
}

// ValidateCategory validates an optional category label.
func ValidateCategory(category string) error {
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidCategory, MaxCategoryLength)
	}
	return nil
}

// ValidateDescription validates a free-form description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	return nil
}

// IsResolvedAsset reports whether ref already points at a hosted asset and
// therefore needs no upload.
func IsResolvedAsset(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateImageRef accepts an empty reference, a hosted http(s) URL or an
// inline data: URI. Filesystem paths and file:// references are rejected.
func ValidateImageRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsResolvedAsset(ref) || IsDataURI(ref) {
		return nil
	}
	return ErrUnsupportedImage
}

// IsDataURI reports whether ref is an inline data: URI.
func IsDataURI(ref string) bool {
	return len(ref) > len("data:") && strings.EqualFold(ref[:len("data:")], "data:")
}

// ValidatePagination applies defaultSize to a missing limit, caps it at
// maxSize and floors offset at zero.
func ValidatePagination(limit, offset, defaultSize, maxSize int) (int, int) {
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
