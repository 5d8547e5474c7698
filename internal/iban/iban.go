// Package iban generates and checks ISO 13616 account numbers.
package iban

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const (
	minLength = 15
	maxLength = 34
)

var ErrInvalidCountry = errors.New("country code must be two uppercase letters")

// Generate returns countryCode + check digits + bankCodeLength random digits +
// accountNumberLength random digits.
func Generate(countryCode string, bankCodeLength, accountNumberLength int) (string, error) {
	if len(countryCode) != 2 || !isUpperLetter(countryCode[0]) || !isUpperLetter(countryCode[1]) {
		return "", ErrInvalidCountry
	}
	if bankCodeLength < 0 || accountNumberLength < 0 {
		return "", fmt.Errorf("negative section length")
	}
	if 4+bankCodeLength+accountNumberLength > maxLength {
		return "", fmt.Errorf("iban would exceed %d characters", maxLength)
	}
	bankCode, err := randomDigits(bankCodeLength)
	if err != nil {
		return "", err
	}
	accountNumber, err := randomDigits(accountNumberLength)
	if err != nil {
		return "", err
	}
	check := checkDigits(countryCode, bankCode+accountNumber)
	return countryCode + check + bankCode + accountNumber, nil
}

// Validate normalizes the input and reports whether its mod-97 remainder is 1.
func Validate(raw string) bool {
	iban := Normalize(raw)
	if len(iban) < minLength || len(iban) > maxLength {
		return false
	}
	rearranged := iban[4:] + iban[:4]
	var numeric strings.Builder
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			numeric.WriteByte(c)
		case isUpperLetter(c):
			fmt.Fprintf(&numeric, "%d", int(c)-55)
		default:
			return false
		}
	}
	return mod97(numeric.String()) == 1
}

// Normalize strips whitespace and uppercases.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
}

func checkDigits(countryCode, bban string) string {
	var numeric strings.Builder
	for _, c := range bban + countryCode + "00" {
		if c >= 'A' && c <= 'Z' {
			fmt.Fprintf(&numeric, "%d", letterValue(byte(c)))
			continue
		}
		numeric.WriteRune(c)
	}
	return fmt.Sprintf("%02d", 98-mod97(numeric.String()))
}

func letterValue(c byte) int {
	return int(c-'A') + 10
}

func mod97(numeric string) int {
	n, ok := new(big.Int).SetString(numeric, 10)
	if !ok {
		return -1
	}
	return int(new(big.Int).Mod(n, big.NewInt(97)).Int64())
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	ten := big.NewInt(10)
	for i := range digits {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}

func isUpperLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
