package napi

import (
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// rootScope is the token of values created while no scope is open. It never
// closes.
const rootScope uint64 = 0

// scopeStack tracks which scope tokens are open. Tokens are never reused, so
// a Value from a closed scope stays dead even after new scopes open.
type scopeStack struct {
	open []uint64
	next uint64
	mu   sync.Mutex
}

func (s *scopeStack) push() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.open = append(s.open, s.next)
	return s.next
}

// pop closes token, which must be the innermost open scope.
func (s *scopeStack) pop(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.open); n == 0 || s.open[n-1] != token {
		return false
	}
	s.open = s.open[:len(s.open)-1]
	return true
}

// unwind closes token and every scope opened after it, returning how many
// inner scopes were left open.
func (s *scopeStack) unwind(token uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.open, token)
	if i < 0 {
		return 0
	}
	leaked := len(s.open) - i - 1
	s.open = s.open[:i]
	return leaked
}

func (s *scopeStack) current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.open) == 0 {
		return rootScope
	}
	return s.open[len(s.open)-1]
}

func (s *scopeStack) live(token uint64) bool {
	if token == rootScope {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.open, token)
}

// HandleScope is an explicitly opened host handle scope. Values created
// while it is the innermost scope die when it closes.
type HandleScope struct {
	env    Env
	raw    hostabi.HandleScope
	token  uint64
	closed bool
}

// OpenHandleScope opens a host handle scope. Close it before the enclosing
// callback returns.
func (e Env) OpenHandleScope() (*HandleScope, error) {
	var raw hostabi.HandleScope
	st := e.table().OpenHandleScope(e.raw, &raw)
	if err := e.check("open_handle_scope", st); err != nil {
		return nil, err
	}
	return &HandleScope{env: e, raw: raw, token: e.m.scopes.push()}, nil
}

// Close closes the scope. Closing a scope that is not the innermost one
// fails with hostabi.StatusHandleScopeMismatch. Closing twice is a no-op.
func (s *HandleScope) Close() error {
	if s.closed {
		return nil
	}
	if !s.env.m.scopes.pop(s.token) {
		return localError("close_handle_scope", hostabi.StatusHandleScopeMismatch, "")
	}
	s.closed = true
	return s.env.check("close_handle_scope", s.env.table().CloseHandleScope(s.env.raw, s.raw))
}
