package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iudanet/globalconnect/internal/client/auth"
	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/client/iocli"
	"github.com/iudanet/globalconnect/internal/client/search"
	"github.com/iudanet/globalconnect/internal/validation"
	"github.com/iudanet/globalconnect/pkg/api"
)

// Ошибки уровня CLI
var (
	ErrUsage            = errors.New("invalid usage")
	ErrInvalidInput     = errors.New("please correct the highlighted fields")
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'globalconnect login' first")
)

// AccountAPI is the part of the backend client used outside the session
type AccountAPI interface {
	ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error)
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) (*api.MessageResponse, error)
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Cli runs one client command
type Cli struct {
	io            iocli.IO
	session       auth.Service
	account       AccountAPI
	catalog       *catalog.Catalog
	debounceDelay time.Duration
}

// New создает CLI
func New(io iocli.IO, session auth.Service, account AccountAPI, cat *catalog.Catalog) *Cli {
	return &Cli{
		io:            io,
		session:       session,
		account:       account,
		catalog:       cat,
		debounceDelay: search.DefaultDelay,
	}
}

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "me":
		return c.runMe(ctx)
	case "forgot-password":
		return c.runForgotPassword(ctx)
	case "reset-password":
		return c.runResetPassword(ctx, args)
	case "change-password":
		return c.runChangePassword(ctx)
	case "tabs":
		return c.runTabs()
	case "browse":
		return c.runBrowse(ctx, args)
	case "jobs", "rooms", "communities", "groups", "events", "news":
		return c.runList(ctx, command, args)
	case "show":
		return c.runShow(ctx, args)
	case "post":
		return c.runPost(ctx, args)
	case "event-register":
		return c.runEventRegister(ctx, args)
	case "messages":
		return c.runMessages(ctx, args)
	default:
		c.io.Printf("Unknown command: %s\n\n", command)
		PrintUsage(c.io)
		return fmt.Errorf("unknown command %q: %w", command, ErrUsage)
	}
}

// requireSession восстанавливает сессию и проверяет, что пользователь вошел
func (c *Cli) requireSession(ctx context.Context) error {
	if err := c.session.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !c.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// reportForm печатает ошибки полей формы
func (c *Cli) reportForm(err error) error {
	var fieldErrs validation.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	c.io.Println()
	for _, field := range fields {
		c.io.Printf("  ✗ %s: %s\n", field, fieldErrs[field])
	}
	return ErrInvalidInput
}

// PrintUsage печатает справку
func PrintUsage(out iocli.IO) {
	out.Println("GlobalConnect Client")
	out.Println()
	out.Println("Usage:")
	out.Println("  globalconnect [OPTIONS] COMMAND [ARGS]")
	out.Println()
	out.Println("Options:")
	out.Println("  --version        Show version information")
	out.Println("  --server URL     Backend URL without /api (default: http://localhost:8000)")
	out.Println("  --db PATH        Path to local database (default: globalconnect-client.db)")
	out.Println()
	out.Println("Environment:")
	out.Println("  GLOBALCONNECT_SERVER              Backend URL, overridden by --server")
	out.Println("  GLOBALCONNECT_STORAGE_PASSPHRASE  Derive the local store key from a passphrase")
	out.Println("                                    instead of the device key file")
	out.Println()
	out.Println("Account:")
	out.Println("  register                     Create an account")
	out.Println("  login                        Sign in")
	out.Println("  logout                       Sign out and clear stored tokens")
	out.Println("  status                       Show session and server status")
	out.Println("  me                           Show your profile")
	out.Println("  forgot-password              Request a password reset token")
	out.Println("  reset-password [token]       Set a new password with a reset token")
	out.Println("  change-password              Change your password")
	out.Println()
	out.Println("Browse:")
	out.Println("  tabs                         List app tabs")
	out.Println("  browse <tab> [query]         Open a tab, searching interactively without a query")
	out.Println("  jobs|rooms [filters] [query] List listings (--country, --city, --type)")
	out.Println("  communities|groups [query]   List communities (--category, --city)")
	out.Println("  events [query]               List group events")
	out.Println("  news [filters] [query]       List news (--category, --city)")
	out.Println("  show <kind> <id>             Show job, room, community, group, event or news details")
	out.Println()
	out.Println("Create:")
	out.Println("  post job|room|community      Publish a listing from this device")
	out.Println("  event-register <eventId>     Register for a group event")
	out.Println("  messages <partnerId>         Chat with a member (/quit to leave)")
	out.Println()
	out.Println("Examples:")
	out.Println("  globalconnect --server https://api.example.com login")
	out.Println("  globalconnect jobs --city Chicago designer")
	out.Println("  globalconnect show room 1")
}
