package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 6
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MinDescriptionLen минимальная длина описания объявления или сообщества
	MinDescriptionLen = 20
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// ValidateEmail проверяет формат email адреса.
// Допускается только "голый" адрес, без display name.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("Invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return fmt.Errorf("Invalid email address")
	}
	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fmt.Errorf("Password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// ValidateUsername проверяет длину username
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	if n < MinUsernameLen {
		return fmt.Errorf("Username must be at least %d characters", MinUsernameLen)
	}
	if n > MaxUsernameLen {
		return fmt.Errorf("Username must not exceed %d characters", MaxUsernameLen)
	}
	return nil
}

// ValidateFirstName проверяет, что имя задано
func ValidateFirstName(name string) error {
	return ValidateRequired(name, "First name is required")
}

// ValidateLastName проверяет, что фамилия задана
func ValidateLastName(name string) error {
	return ValidateRequired(name, "Last name is required")
}

// ValidatePhone проверяет, что телефон состоит ровно из 10 цифр
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("Phone must be 10 digits")
	}
	return nil
}

// ValidateRequired проверяет, что значение не пустое
func ValidateRequired(value, message string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s", message)
	}
	return nil
}

// ValidateMinLen проверяет минимальную длину строки в символах
func ValidateMinLen(value string, minLen int, message string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < minLen {
		return fmt.Errorf("%s", message)
	}
	return nil
}

// ValidateDigits проверяет, что строка состоит только из цифр
func ValidateDigits(value string) error {
	if !digitsPattern.MatchString(value) {
		return fmt.Errorf("Must be a number")
	}
	return nil
}
