package validation

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FieldErrors ошибки валидации формы: имя поля -> сообщение.
// Для каждого поля хранится только первая ошибка, как в inline-подсказках формы.
type FieldErrors map[string]string

// Error реализует интерфейс error
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return strings.Join(parts, "; ")
}

// add добавляет ошибку поля, если err != nil и для поля еще нет ошибки
func (fe FieldErrors) add(field string, err error) {
	if err == nil {
		return
	}
	if _, exists := fe[field]; exists {
		return
	}
	fe[field] = err.Error()
}

// errOrNil возвращает nil, если ошибок нет
func (fe FieldErrors) errOrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// LoginForm форма входа
type LoginForm struct {
	Email    string
	Password string
}

// Validate проверяет форму входа
func (f LoginForm) Validate() error {
	errs := FieldErrors{}
	errs.add("email", ValidateEmail(f.Email))
	errs.add("password", ValidatePassword(f.Password))
	return errs.errOrNil()
}

// RegisterForm форма регистрации
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate проверяет форму регистрации
func (f RegisterForm) Validate() error {
	errs := FieldErrors{}
	errs.add("username", ValidateUsername(f.Username))
	errs.add("email", ValidateEmail(f.Email))
	errs.add("password", ValidatePassword(f.Password))
	errs.add("confirmPassword", ValidatePassword(f.ConfirmPassword))
	if f.Password != f.ConfirmPassword {
		errs.add("confirmPassword", errString("Passwords don't match"))
	}
	return errs.errOrNil()
}

// ForgotPasswordForm форма запроса сброса пароля
type ForgotPasswordForm struct {
	Email string
}

// Validate проверяет форму запроса сброса пароля
func (f ForgotPasswordForm) Validate() error {
	errs := FieldErrors{}
	errs.add("email", ValidateEmail(f.Email))
	return errs.errOrNil()
}

// ResetPasswordForm форма установки нового пароля
type ResetPasswordForm struct {
	NewPassword     string
	ConfirmPassword string
}

// Validate проверяет форму установки нового пароля
func (f ResetPasswordForm) Validate() error {
	errs := FieldErrors{}
	errs.add("newPassword", ValidatePassword(f.NewPassword))
	errs.add("confirmPassword", ValidatePassword(f.ConfirmPassword))
	if f.NewPassword != f.ConfirmPassword {
		errs.add("confirmPassword", errString("Passwords don't match"))
	}
	return errs.errOrNil()
}

// JobForm форма публикации вакансии
type JobForm struct {
	JobTitle     string
	Company      string
	Country      string
	City         string
	Area         string
	JobType      string
	Salary       string
	Description  string
	Requirements string
	ContactEmail string
	ContactPhone string
}

// Validate проверяет форму вакансии
func (f JobForm) Validate() error {
	errs := FieldErrors{}
	errs.add("jobTitle", ValidateMinLen(f.JobTitle, 3, "Job title must be at least 3 characters"))
	errs.add("company", ValidateMinLen(f.Company, 2, "Company name is required"))
	errs.add("country", ValidateMinLen(f.Country, 2, "Country is required"))
	errs.add("city", ValidateMinLen(f.City, 2, "City is required"))
	errs.add("description", ValidateMinLen(f.Description, MinDescriptionLen, "Description must be at least 20 characters"))
	if strings.TrimSpace(f.ContactEmail) != "" {
		errs.add("contactEmail", ValidateEmail(f.ContactEmail))
	}
	return errs.errOrNil()
}

// RoomForm форма публикации жилья
type RoomForm struct {
	Title         string
	Rent          string
	Country       string
	City          string
	Area          string
	RoomType      string
	Size          string
	Bedrooms      string
	Bathrooms     string
	Description   string
	Amenities     string
	AvailableFrom string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
}

// Validate проверяет форму жилья
func (f RoomForm) Validate() error {
	errs := FieldErrors{}
	errs.add("title", ValidateMinLen(f.Title, 3, "Title must be at least 3 characters"))
	errs.add("rent", ValidateRequired(f.Rent, "Rent is required"))
	errs.add("country", ValidateMinLen(f.Country, 2, "Country is required"))
	errs.add("city", ValidateMinLen(f.City, 2, "City is required"))
	errs.add("description", ValidateMinLen(f.Description, MinDescriptionLen, "Description must be at least 20 characters"))
	if f.Bedrooms != "" {
		errs.add("bedrooms", ValidateDigits(f.Bedrooms))
	}
	if f.Bathrooms != "" {
		errs.add("bathrooms", ValidateDigits(f.Bathrooms))
	}
	if strings.TrimSpace(f.ContactEmail) != "" {
		errs.add("contactEmail", ValidateEmail(f.ContactEmail))
	}
	if f.ContactPhone != "" {
		errs.add("contactPhone", ValidatePhone(f.ContactPhone))
	}
	return errs.errOrNil()
}

// CommunityForm форма создания сообщества или группы
type CommunityForm struct {
	Name        string
	Description string
	Category    string
	Location    string
	Rules       string
	IsPrivate   bool
}

// Validate проверяет форму сообщества
func (f CommunityForm) Validate() error {
	errs := FieldErrors{}
	errs.add("name", ValidateMinLen(f.Name, 3, "Community name must be at least 3 characters"))
	errs.add("description", ValidateMinLen(f.Description, MinDescriptionLen, "Description must be at least 20 characters"))
	return errs.errOrNil()
}

// EventRegistrationForm форма регистрации на событие
type EventRegistrationForm struct {
	FullName string
	Email    string
	Phone    string
	Adults   string
	Children string
}

// Validate проверяет форму регистрации на событие
func (f EventRegistrationForm) Validate() error {
	errs := FieldErrors{}
	errs.add("fullName", ValidateMinLen(f.FullName, 2, "Full name is required"))
	errs.add("email", ValidateEmail(f.Email))
	errs.add("phone", ValidateMinLen(f.Phone, 7, "Phone number is too short"))
	errs.add("adults", ValidateDigits(f.Adults))
	if n, err := strconv.Atoi(f.Adults); err == nil && n <= 0 {
		errs.add("adults", errString("At least one adult required"))
	}
	errs.add("children", ValidateDigits(f.Children))
	return errs.errOrNil()
}

// ContactForm контактные данные пользователя. Адрес, город, индекс и страна необязательны.
type ContactForm struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	ZipCode   string
	Country   string
}

// Validate проверяет контактные данные
func (f ContactForm) Validate() error {
	errs := FieldErrors{}
	errs.add("firstName", ValidateFirstName(f.FirstName))
	errs.add("lastName", ValidateLastName(f.LastName))
	errs.add("phone", ValidatePhone(f.Phone))
	return errs.errOrNil()
}

// textPolicy удаляет любую разметку из пользовательского текста
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText удаляет HTML разметку и лишние пробелы по краям.
// Результат предназначен для вывода в терминал, поэтому сущности раскодируются обратно.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

type errString string

func (e errString) Error() string { return string(e) }
