package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/globalconnect/internal/client/auth"
	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/client/storage"
	"github.com/iudanet/globalconnect/pkg/api"
)

// scriptedIO отдает заранее заданные ответы и собирает вывод
type scriptedIO struct {
	out     bytes.Buffer
	inputs  []string
	prompts []string
}

func newScriptedIO(inputs ...string) *scriptedIO {
	return &scriptedIO{inputs: inputs}
}

func (s *scriptedIO) Println(a ...any) {
	fmt.Fprintln(&s.out, a...)
}

func (s *scriptedIO) Printf(format string, a ...any) {
	fmt.Fprintf(&s.out, format, a...)
}

func (s *scriptedIO) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *scriptedIO) ReadInput(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	next := s.inputs[0]
	s.inputs = s.inputs[1:]
	return next, nil
}

func (s *scriptedIO) ReadPassword(prompt string) (string, error) {
	return s.ReadInput(prompt)
}

func (s *scriptedIO) String() string {
	return s.out.String()
}

type fakeSession struct {
	user        *auth.User
	loginErr    error
	registerErr error
	restoreErr  error
	loginEmail  string
	regUsername string
	loggedOut   bool
	stored      bool
}

func (f *fakeSession) Login(_ context.Context, email, _ string) error {
	f.loginEmail = email
	if f.loginErr != nil {
		return f.loginErr
	}
	f.user = &auth.User{ID: "u1", Email: email, Username: "sita"}
	return nil
}

func (f *fakeSession) Register(_ context.Context, email, _, username string) error {
	f.regUsername = username
	if f.registerErr != nil {
		return f.registerErr
	}
	f.user = &auth.User{ID: "u1", Email: email, Username: username}
	return nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.loggedOut = true
	f.user = nil
	f.stored = false
	return nil
}

func (f *fakeSession) RefreshUser(context.Context) error { return nil }

func (f *fakeSession) Restore(context.Context) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	if f.stored && f.user == nil {
		f.user = &auth.User{
			ID: "u1", Email: "sita@example.com", Username: "sita",
			CreatedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return nil
}

func (f *fakeSession) User() *auth.User { return f.user }

func (f *fakeSession) State() auth.State {
	if f.user != nil {
		return auth.StateAuthenticated
	}
	return auth.StateUnauthenticated
}

func (f *fakeSession) IsAuthenticated() bool { return f.user != nil }

type fakeAccount struct {
	forgotResp *api.MessageResponse
	err        error
	healthErr  error
	lastReset  api.ResetPasswordRequest
	lastChange api.ChangePasswordRequest
}

func (f *fakeAccount) ForgotPassword(context.Context, api.ForgotPasswordRequest) (*api.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.forgotResp != nil {
		return f.forgotResp, nil
	}
	return &api.MessageResponse{Message: "If the email exists, a reset token has been generated"}, nil
}

func (f *fakeAccount) ResetPassword(_ context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error) {
	f.lastReset = req
	if f.err != nil {
		return nil, f.err
	}
	return &api.MessageResponse{Message: "Password reset successful"}, nil
}

func (f *fakeAccount) ChangePassword(_ context.Context, req api.ChangePasswordRequest) (*api.MessageResponse, error) {
	f.lastChange = req
	if f.err != nil {
		return nil, f.err
	}
	return &api.MessageResponse{Message: "Password changed successfully"}, nil
}

func (f *fakeAccount) Health(context.Context) (*api.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &api.HealthResponse{Status: "ok", Version: "test"}, nil
}

type memLocal struct {
	posts    map[string][]*storage.Post
	messages map[string][]*storage.Message
	mu       sync.Mutex
}

func (m *memLocal) SavePost(_ context.Context, post *storage.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.Kind] = append(m.posts[post.Kind], post)
	return nil
}

func (m *memLocal) ListPosts(_ context.Context, kind string) ([]*storage.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*storage.Post(nil), m.posts[kind]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLocal) AppendMessage(_ context.Context, msg *storage.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.PartnerID] = append(m.messages[msg.PartnerID], msg)
	return nil
}

func (m *memLocal) ListMessages(_ context.Context, partnerID string) ([]*storage.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*storage.Message(nil), m.messages[partnerID]...), nil
}

type testEnv struct {
	cli     *Cli
	io      *scriptedIO
	session *fakeSession
	account *fakeAccount
	local   *memLocal
}

func newTestEnv(inputs ...string) *testEnv {
	local := &memLocal{
		posts:    make(map[string][]*storage.Post),
		messages: make(map[string][]*storage.Message),
	}
	env := &testEnv{
		io:      newScriptedIO(inputs...),
		session: &fakeSession{},
		account: &fakeAccount{},
		local:   local,
	}
	env.cli = New(env.io, env.session, env.account, catalog.New(local, local, nil))
	env.cli.debounceDelay = 10 * time.Millisecond
	return env
}
