package portfolio

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPINLength is the minimum number of digits of a PIN.
const MinPINLength = 4

var (
	ErrInvalidPIN = errors.New("invalid PIN")
	ErrWrongPIN   = errors.New("wrong PIN")
)

// HashPIN checks pin is made of at least MinPINLength digits and returns
// its bcrypt hash.
func HashPIN(pin string) (string, error) {
	if len(pin) < MinPINLength {
		return "", fmt.Errorf("%w: at least %d digits", ErrInvalidPIN, MinPINLength)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return "", fmt.Errorf("%w: digits only", ErrInvalidPIN)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash PIN: %w", err)
	}
	return string(hash), nil
}

// CheckPIN compares pin with a hash returned by HashPIN.
func CheckPIN(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	return nil
}
