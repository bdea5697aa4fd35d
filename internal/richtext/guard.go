package richtext

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrPayloadTooLarge   = errors.New("richtext: payload too large")
	ErrTooManyCharacters = errors.New("richtext: too many characters")
)

const (
	DefaultMaxBytes      = 65535
	DefaultMaxCharacters = 20000
)

// Limits bounds stored documents. A zero value disables the matching guard.
type Limits struct {
	MaxBytes      int
	MaxCharacters int
}

// DefaultLimits returns the stock storage and character limits.
func DefaultLimits() Limits {
	return Limits{MaxBytes: DefaultMaxBytes, MaxCharacters: DefaultMaxCharacters}
}

// PayloadTooLargeError reports a normalized document above the byte limit.
type PayloadTooLargeError struct {
	Field  string
	Limit  int
	Actual int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("%s: field %q is %d bytes, limit is %d", ErrPayloadTooLarge, e.Field, e.Actual, e.Limit)
}

func (e *PayloadTooLargeError) Unwrap() error {
	return ErrPayloadTooLarge
}

// TooManyCharactersError reports plain text above the character limit.
type TooManyCharactersError struct {
	Field  string
	Limit  int
	Actual int
}

func (e *TooManyCharactersError) Error() string {
	return fmt.Sprintf("%s: field %q has %d characters, limit is %d", ErrTooManyCharacters, e.Field, e.Actual, e.Limit)
}

func (e *TooManyCharactersError) Unwrap() error {
	return ErrTooManyCharacters
}

// BytesLength is the storage size of the normalized form of raw.
func BytesLength(raw string) int {
	return len(Normalize(raw))
}

// CharacterCount is the number of characters in the plain text of raw.
func CharacterCount(raw string) int {
	return utf8.RuneCountInString(Extract(raw))
}

// CheckBytes fails when size exceeds the byte limit.
func (l Limits) CheckBytes(field string, size int) error {
	if l.MaxBytes > 0 && size > l.MaxBytes {
		return &PayloadTooLargeError{Field: field, Limit: l.MaxBytes, Actual: size}
	}
	return nil
}

// CheckCharacters fails when count exceeds the character limit.
func (l Limits) CheckCharacters(field string, count int) error {
	if l.MaxCharacters > 0 && count > l.MaxCharacters {
		return &TooManyCharactersError{Field: field, Limit: l.MaxCharacters, Actual: count}
	}
	return nil
}
