package state

import (
	"errors"
	"testing"

	"github.com/sadopc/civic/internal/domain"
)

type failingFlag struct{}

func (failingFlag) Remembered() (bool, error) { return false, errors.New("disk gone") }
func (failingFlag) SetRemembered(bool) error  { return errors.New("disk gone") }

func loginSession(t *testing.T, flag Flag, remember bool) *Session {
	t.Helper()
	s := NewSession(flag, nil)
	s.FinishLoading()
	if err := s.RequestLogin("elena.popescu@email.com", remember); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitCode("123456"); err != nil {
		t.Fatal(err)
	}
	return s
}

// ============================================================
// Startup
// ============================================================

func TestNewSessionLoggedOut(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	if s.State() != LoggedOut {
		t.Fatalf("state = %s", s.State())
	}
	if !s.Loading() {
		t.Fatal("session should start behind the loading gate")
	}
	s.FinishLoading()
	if s.Loading() {
		t.Fatal("loading should clear")
	}
}

func TestNewSessionRemembered(t *testing.T) {
	flag := &MemoryFlag{}
	flag.SetRemembered(true)
	s := NewSession(flag, nil)
	if s.State() != LoggedIn {
		t.Fatalf("remembered session should start logged in, got %s", s.State())
	}
	if !s.Loading() {
		t.Fatal("remembered session still passes the loading gate")
	}
}

func TestNewSessionFlagError(t *testing.T) {
	s := NewSession(failingFlag{}, nil)
	if s.State() != LoggedOut {
		t.Fatal("unreadable flag should be treated as not remembered")
	}
}

// ============================================================
// Login
// ============================================================

func TestLoginFlow(t *testing.T) {
	flag := &MemoryFlag{}
	s := NewSession(flag, nil)
	s.FinishLoading()

	if err := s.RequestLogin("elena.popescu@email.com", false); err != nil {
		t.Fatal(err)
	}
	if s.State() != AwaitingVerification {
		t.Fatalf("state = %s", s.State())
	}
	if s.Email() != "elena.popescu@email.com" {
		t.Fatalf("email = %q", s.Email())
	}
	if err := s.SubmitCode("1234"); err != nil {
		t.Fatal(err)
	}
	if s.State() != LoggedIn {
		t.Fatalf("state = %s", s.State())
	}
	if on, _ := flag.Remembered(); on {
		t.Fatal("flag should not be set without remember me")
	}
}

func TestLoginRememberMe(t *testing.T) {
	flag := &MemoryFlag{}
	loginSession(t, flag, true)
	if on, _ := flag.Remembered(); !on {
		t.Fatal("remember me should persist the flag")
	}
}

func TestRequestLoginInvalidEmail(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	for _, e := range []string{"", "not-an-email", "@"} {
		if err := s.RequestLogin(e, false); !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", e, err)
		}
	}
	if s.State() != LoggedOut {
		t.Fatal("invalid email should not change state")
	}
}

func TestRequestLoginWrongState(t *testing.T) {
	s := loginSession(t, &MemoryFlag{}, false)
	if err := s.RequestLogin("a@b.md", false); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSubmitCodeTooShort(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	s.RequestLogin("elena.popescu@email.com", false)
	for _, c := range []string{"", "1", "123"} {
		if err := s.SubmitCode(c); !errors.Is(err, domain.ErrInvalidCode) {
			t.Fatalf("code %q: expected ErrInvalidCode, got %v", c, err)
		}
	}
	if s.State() != AwaitingVerification {
		t.Fatal("short code should keep the session waiting")
	}
}

func TestSubmitCodeWithoutRequest(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	if err := s.SubmitCode("1234"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMinCodeLengthOverride(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	s.SetMinCodeLength(6)
	if err := s.ValidateCode("12345"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := s.ValidateCode("123456"); err != nil {
		t.Fatal(err)
	}
	s.SetMinCodeLength(0)
	if err := s.ValidateCode("12345"); err == nil {
		t.Fatal("non-positive override should be ignored")
	}
}

func TestChangeEmail(t *testing.T) {
	s := NewSession(&MemoryFlag{}, nil)
	if err := s.ChangeEmail(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	s.RequestLogin("elena.popescu@email.com", false)
	if err := s.ChangeEmail(); err != nil {
		t.Fatal(err)
	}
	if s.State() != LoggedOut {
		t.Fatalf("state = %s", s.State())
	}
}

// ============================================================
// Logout
// ============================================================

func TestLogoutClearsFlag(t *testing.T) {
	flag := &MemoryFlag{}
	s := loginSession(t, flag, true)
	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if s.State() != LoggedOut {
		t.Fatalf("state = %s", s.State())
	}
	if on, _ := flag.Remembered(); on {
		t.Fatal("logout should clear the flag")
	}

	// A restart after logout starts logged out.
	if NewSession(flag, nil).State() != LoggedOut {
		t.Fatal("restart after logout should not be pre-authenticated")
	}
}

func TestLogoutFlagError(t *testing.T) {
	s := NewSession(failingFlag{}, nil)
	if err := s.Logout(); err == nil {
		t.Fatal("expected flag error")
	}
	if s.State() != LoggedOut {
		t.Fatal("logout should still leave the session logged out")
	}
}

func TestSessionStateString(t *testing.T) {
	if LoggedIn.String() != "logged_in" || AwaitingVerification.String() != "awaiting_verification" {
		t.Fatal("unexpected state names")
	}
}
