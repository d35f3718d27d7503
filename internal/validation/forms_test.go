package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "ndc@gmail.com"},
		{name: "valid with plus", email: "user+tag@example.org"},
		{name: "empty", email: "", wantErr: true},
		{name: "no at sign", email: "user.example.com", wantErr: true},
		{name: "no tld", email: "user@localhost", wantErr: true},
		{name: "display name", email: "Bob <bob@example.com>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "Invalid email address", err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("9841234567"))
	assert.EqualError(t, ValidatePhone("98412"), "Phone must be 10 digits")
	assert.EqualError(t, ValidatePhone("98412345ab"), "Phone must be 10 digits")
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateFirstName("Sita"))
	assert.NoError(t, ValidateLastName("Sharma"))
	assert.EqualError(t, ValidateFirstName(""), "First name is required")
	assert.EqualError(t, ValidateFirstName("   "), "First name is required")
	assert.EqualError(t, ValidateLastName(""), "Last name is required")
}

func TestContactForm_Validate(t *testing.T) {
	valid := ContactForm{FirstName: "Sita", LastName: "Sharma", Phone: "9841234567"}
	assert.NoError(t, valid.Validate())

	err := ContactForm{Phone: "123"}.Validate()
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, FieldErrors{
		"firstName": "First name is required",
		"lastName":  "Last name is required",
		"phone":     "Phone must be 10 digits",
	}, fieldErrs)
}

func TestLoginForm_Validate(t *testing.T) {
	t.Run("short password shows validation error", func(t *testing.T) {
		err := LoginForm{Email: "ndc@gmail.com", Password: "12345"}.Validate()
		require.Error(t, err)

		var fieldErrs FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		assert.Equal(t, "Password must be at least 6 characters", fieldErrs["password"])
		assert.NotContains(t, fieldErrs, "email")
	})

	t.Run("valid form", func(t *testing.T) {
		assert.NoError(t, LoginForm{Email: "ndc@gmail.com", Password: "test1234"}.Validate())
	})

	t.Run("both fields invalid", func(t *testing.T) {
		err := LoginForm{Email: "bad", Password: ""}.Validate()
		require.Error(t, err)
		assert.Equal(t, "email: Invalid email address; password: Password must be at least 6 characters", err.Error())
	})
}

func TestRegisterForm_Validate(t *testing.T) {
	tests := []struct {
		form      RegisterForm
		wantField map[string]string
		name      string
	}{
		{
			name: "valid",
			form: RegisterForm{Username: "sita", Email: "sita@example.com", Password: "secret1", ConfirmPassword: "secret1"},
		},
		{
			name: "passwords do not match",
			form: RegisterForm{Username: "sita", Email: "sita@example.com", Password: "secret1", ConfirmPassword: "secret2"},
			wantField: map[string]string{
				"confirmPassword": "Passwords don't match",
			},
		},
		{
			name: "short username",
			form: RegisterForm{Username: "ab", Email: "sita@example.com", Password: "secret1", ConfirmPassword: "secret1"},
			wantField: map[string]string{
				"username": "Username must be at least 3 characters",
			},
		},
		{
			name: "short confirmation reported before mismatch",
			form: RegisterForm{Username: "sita", Email: "sita@example.com", Password: "secret1", ConfirmPassword: "abc"},
			wantField: map[string]string{
				"confirmPassword": "Password must be at least 6 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantField == nil {
				assert.NoError(t, err)
				return
			}
			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Equal(t, FieldErrors(tt.wantField), fieldErrs)
		})
	}
}

func TestResetPasswordForm_Validate(t *testing.T) {
	assert.NoError(t, ResetPasswordForm{NewPassword: "newpass", ConfirmPassword: "newpass"}.Validate())

	err := ResetPasswordForm{NewPassword: "newpass", ConfirmPassword: "newpas2"}.Validate()
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Passwords don't match", fieldErrs["confirmPassword"])
}

func TestJobForm_Validate(t *testing.T) {
	valid := JobForm{
		JobTitle:    "Senior Software Engineer",
		Company:     "Tech Corp",
		Country:     "United States",
		City:        "New York",
		Description: "Build and maintain backend services for our platform.",
	}
	assert.NoError(t, valid.Validate())

	invalid := valid
	invalid.JobTitle = "SE"
	invalid.Description = "too short"
	invalid.ContactEmail = "not-an-email"

	var fieldErrs FieldErrors
	require.ErrorAs(t, invalid.Validate(), &fieldErrs)
	assert.Equal(t, "Job title must be at least 3 characters", fieldErrs["jobTitle"])
	assert.Equal(t, "Description must be at least 20 characters", fieldErrs["description"])
	assert.Equal(t, "Invalid email address", fieldErrs["contactEmail"])
	assert.Len(t, fieldErrs, 3)
}

func TestRoomForm_Validate(t *testing.T) {
	form := RoomForm{
		Title:        "Cozy Studio",
		Rent:         "$950/month",
		Country:      "United States",
		City:         "New York",
		Description:  "Bright studio close to the subway and parks.",
		Bedrooms:     "two",
		ContactPhone: "123",
	}

	var fieldErrs FieldErrors
	require.ErrorAs(t, form.Validate(), &fieldErrs)
	assert.Equal(t, "Must be a number", fieldErrs["bedrooms"])
	assert.Equal(t, "Phone must be 10 digits", fieldErrs["contactPhone"])

	form.Bedrooms = "2"
	form.ContactPhone = "9841234567"
	assert.NoError(t, form.Validate())
}

func TestCommunityForm_Validate(t *testing.T) {
	var fieldErrs FieldErrors
	require.ErrorAs(t, CommunityForm{Name: "NY", Description: "short"}.Validate(), &fieldErrs)
	assert.Equal(t, "Community name must be at least 3 characters", fieldErrs["name"])
	assert.Equal(t, "Description must be at least 20 characters", fieldErrs["description"])

	assert.NoError(t, CommunityForm{
		Name:        "Brooklyn Runners Club",
		Description: "Running group for all fitness levels in Brooklyn",
	}.Validate())
}

func TestEventRegistrationForm_Validate(t *testing.T) {
	tests := []struct {
		form      EventRegistrationForm
		wantField string
		wantMsg   string
		name      string
	}{
		{
			name: "valid",
			form: EventRegistrationForm{FullName: "Ram Thapa", Email: "ram@example.com", Phone: "9841234", Adults: "2", Children: "0"},
		},
		{
			name:      "zero adults",
			form:      EventRegistrationForm{FullName: "Ram Thapa", Email: "ram@example.com", Phone: "9841234", Adults: "0", Children: "0"},
			wantField: "adults",
			wantMsg:   "At least one adult required",
		},
		{
			name:      "children not a number",
			form:      EventRegistrationForm{FullName: "Ram Thapa", Email: "ram@example.com", Phone: "9841234", Adults: "1", Children: "x"},
			wantField: "children",
			wantMsg:   "Must be a number",
		},
		{
			name:      "short phone",
			form:      EventRegistrationForm{FullName: "Ram Thapa", Email: "ram@example.com", Phone: "123", Adults: "1", Children: "0"},
			wantField: "phone",
			wantMsg:   "Phone number is too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Equal(t, tt.wantMsg, fieldErrs[tt.wantField])
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Hello world", SanitizeText("  <b>Hello</b> <script>alert(1)</script>world "))
	assert.Equal(t, "Tom & Jerry", SanitizeText("Tom & Jerry"))
}
