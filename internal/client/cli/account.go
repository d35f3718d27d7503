package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/globalconnect/internal/client/api"
	"github.com/iudanet/globalconnect/internal/client/auth"
	"github.com/iudanet/globalconnect/internal/validation"
	pkgapi "github.com/iudanet/globalconnect/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Register ===")
	c.io.Println()

	var form validation.RegisterForm
	var err error
	if form.Username, err = c.io.ReadInput("Username: "); err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if form.Email, err = c.io.ReadInput("Email: "); err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if form.Password, err = c.io.ReadPassword("Password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if form.ConfirmPassword, err = c.io.ReadPassword("Confirm password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := form.Validate(); err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Println("Creating account...")
	if err := c.session.Register(ctx, form.Email, form.Password, form.Username); err != nil {
		return err
	}

	user := c.session.User()
	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Welcome, %s!\n", user.Username)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	var form validation.LoginForm
	var err error
	if form.Email, err = c.io.ReadInput("Email: "); err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if form.Password, err = c.io.ReadPassword("Password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := form.Validate(); err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")
	if err := c.session.Login(ctx, form.Email, form.Password); err != nil {
		return err
	}

	user := c.session.User()
	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Signed in as %s <%s>\n", user.Username, user.Email)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Logged out. Stored tokens were removed from this device.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	if err := c.session.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if user := c.session.User(); user != nil {
		c.io.Println("Session: Authenticated")
		c.io.Printf("User:    %s <%s>\n", user.Username, user.Email)
	} else {
		c.io.Println("Session: Not authenticated")
		c.io.Println("Run 'globalconnect login' to sign in.")
	}

	health, err := c.account.Health(ctx)
	if err != nil {
		c.io.Printf("Server:  unreachable (%v)\n", err)
		return nil
	}
	c.io.Printf("Server:  %s (version %s)\n", health.Status, health.Version)
	return nil
}

func (c *Cli) runMe(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	user := c.session.User()
	c.io.Println("=== Profile ===")
	c.io.Println()
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Printf("ID:       %s\n", user.ID)
	if user.ProfileImage != nil && *user.ProfileImage != "" {
		c.io.Printf("Photo:    %s\n", *user.ProfileImage)
	}
	if !user.CreatedAt.IsZero() {
		c.io.Printf("Joined:   %s\n", user.CreatedAt.Format(time.DateOnly))
	}
	return nil
}

func (c *Cli) runForgotPassword(ctx context.Context) error {
	c.io.Println("=== Forgot Password ===")
	c.io.Println()

	var form validation.ForgotPasswordForm
	var err error
	if form.Email, err = c.io.ReadInput("Email: "); err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := form.Validate(); err != nil {
		return c.reportForm(err)
	}

	resp, err := c.account.ForgotPassword(ctx, pkgapi.ForgotPasswordRequest{Email: form.Email})
	if err != nil {
		return failure(err, "Failed to send reset email")
	}

	c.io.Println()
	c.io.Printf("✓ %s\n", resp.Message)
	if resp.ResetToken != "" {
		c.io.Printf("Reset token: %s\n", resp.ResetToken)
	}
	c.io.Println("Run 'globalconnect reset-password' with the token to choose a new password.")
	return nil
}

func (c *Cli) runResetPassword(ctx context.Context, args []string) error {
	c.io.Println("=== Reset Password ===")
	c.io.Println()

	var token string
	var err error
	if len(args) > 0 {
		token = args[0]
	} else if token, err = c.io.ReadInput("Reset token: "); err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("reset token is required: %w", ErrUsage)
	}

	var form validation.ResetPasswordForm
	if form.NewPassword, err = c.io.ReadPassword("New password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if form.ConfirmPassword, err = c.io.ReadPassword("Confirm password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := form.Validate(); err != nil {
		return c.reportForm(err)
	}

	resp, err := c.account.ResetPassword(ctx, pkgapi.ResetPasswordRequest{Token: token, NewPassword: form.NewPassword})
	if err != nil {
		return failure(err, "Failed to reset password")
	}

	c.io.Println()
	c.io.Printf("✓ %s\n", resp.Message)
	return nil
}

func (c *Cli) runChangePassword(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	c.io.Println("=== Change Password ===")
	c.io.Println()

	oldPassword, err := c.io.ReadPassword("Current password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	var form validation.ResetPasswordForm
	if form.NewPassword, err = c.io.ReadPassword("New password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if form.ConfirmPassword, err = c.io.ReadPassword("Confirm password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := form.Validate(); err != nil {
		return c.reportForm(err)
	}

	resp, err := c.account.ChangePassword(ctx, pkgapi.ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: form.NewPassword,
	})
	if err != nil {
		return failure(err, "Failed to change password")
	}

	c.io.Println()
	c.io.Printf("✓ %s\n", resp.Message)
	return nil
}

// failure возвращает detail сервера или текст по умолчанию
func failure(err error, fallback string) error {
	msg := api.Detail(err)
	if msg == "" {
		msg = fallback
	}
	return &auth.Error{Message: msg, Err: err}
}
