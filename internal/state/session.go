package state

import (
	"fmt"
	"net/mail"
	"sync"

	"github.com/sadopc/civic/internal/domain"
	"go.uber.org/zap"
)

// MinCodeLength is the placeholder acceptance rule for one-time codes. It is
// not a verification policy.
const MinCodeLength = 4

type SessionState int

const (
	LoggedOut SessionState = iota
	AwaitingVerification
	LoggedIn
)

var sessionStateNames = map[SessionState]string{
	LoggedOut:            "logged_out",
	AwaitingVerification: "awaiting_verification",
	LoggedIn:             "logged_in",
}

func (s SessionState) String() string { return sessionStateNames[s] }

// Flag persists the "remember user" choice across restarts.
type Flag interface {
	Remembered() (bool, error)
	SetRemembered(bool) error
}

// MemoryFlag is a Flag that lives only as long as the process.
type MemoryFlag struct {
	mu  sync.Mutex
	set bool
}

func (f *MemoryFlag) Remembered() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set, nil
}

func (f *MemoryFlag) SetRemembered(v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = v
	return nil
}

// Session is the login state machine plus the startup loading gate.
type Session struct {
	mu       sync.Mutex
	state    SessionState
	loading  bool
	email    string
	remember bool

	minCode int
	flag    Flag
	log     *zap.Logger
}

// NewSession starts pre-authenticated when the flag is set. Either way the
// session begins behind the loading gate.
func NewSession(flag Flag, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		state:   LoggedOut,
		loading: true,
		minCode: MinCodeLength,
		flag:    flag,
		log:     log,
	}
	remembered, err := flag.Remembered()
	if err != nil {
		log.Warn("read remember flag", zap.Error(err))
	}
	if remembered {
		s.state = LoggedIn
		s.remember = true
		log.Info("session restored from remembered login")
	}
	return s
}

// SetMinCodeLength overrides the placeholder code length rule.
func (s *Session) SetMinCodeLength(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.minCode = n
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

func (s *Session) FinishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// ValidateEmail reports whether addr is a usable address for the code step.
func ValidateEmail(addr string) error {
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEmail, addr)
	}
	return nil
}

// RequestLogin records that a code was sent to email and waits for it.
func (s *Session) RequestLogin(email string, rememberMe bool) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedOut {
		return fmt.Errorf("request login from %s: %w", s.state, domain.ErrInvalidTransition)
	}
	s.email = email
	s.remember = rememberMe
	s.state = AwaitingVerification
	s.log.Info("verification code sent", zap.String("email", email), zap.Bool("remember", rememberMe))
	return nil
}

// ChangeEmail abandons the code step and returns to credential entry.
func (s *Session) ChangeEmail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingVerification {
		return fmt.Errorf("change email from %s: %w", s.state, domain.ErrInvalidTransition)
	}
	s.state = LoggedOut
	return nil
}

// ValidateCode applies the placeholder length rule.
func (s *Session) ValidateCode(code string) error {
	s.mu.Lock()
	n := s.minCode
	s.mu.Unlock()
	if len(code) < n {
		return fmt.Errorf("%w: need at least %d characters", domain.ErrInvalidCode, n)
	}
	return nil
}

// SubmitCode completes the login. The remember flag is persisted only when
// the citizen asked for it.
func (s *Session) SubmitCode(code string) error {
	if err := s.ValidateCode(code); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingVerification {
		return fmt.Errorf("submit code from %s: %w", s.state, domain.ErrInvalidTransition)
	}
	if s.remember {
		if err := s.flag.SetRemembered(true); err != nil {
			s.log.Warn("persist remember flag", zap.Error(err))
		}
	}
	s.state = LoggedIn
	s.log.Info("logged in", zap.String("email", s.email))
	return nil
}

// Logout clears the remembered login and returns to credential entry.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LoggedOut
	s.remember = false
	if err := s.flag.SetRemembered(false); err != nil {
		return fmt.Errorf("clear remember flag: %w", err)
	}
	s.log.Info("logged out")
	return nil
}
