package client

import "sync"

// UserProfile is the cached shape of /api/admin/me.
type UserProfile struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty"`
	IsAdmin     bool    `json:"is_admin"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

// Session holds the bearer token and the cached user profile. All methods
// are safe for concurrent use; replacing the token is a single atomic swap.
type Session struct {
	mu    sync.Mutex
	token string
	user  *UserProfile
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Set replaces the session in one step.
func (s *Session) Set(token string, user *UserProfile) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

func (s *Session) SetUser(user *UserProfile) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Clear wipes the session and reports whether there was anything to wipe.
// A second concurrent clear is a no-op, which keeps forced logout idempotent.
func (s *Session) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.token != ""
	s.token = ""
	s.user = nil
	return had
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}
