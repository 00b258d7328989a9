package server

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/paulwritescode/minidb/internal/types"
)

// authenticator guards the server with a single configured credential pair.
// Auth is disabled entirely when no username is configured.
type authenticator struct {
	enabled      bool
	username     string
	passwordHash []byte

	mu     sync.Mutex
	tokens map[string]bool
}

func newAuthenticator(username, password string) *authenticator {
	a := &authenticator{tokens: make(map[string]bool)}
	if username == "" {
		return a
	}
	// bcrypt limits passwords to 72 bytes.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		types.GlobalLogger.Error("hashing server password: %v", err)
		return a
	}
	a.enabled = true
	a.username = username
	a.passwordHash = hash
	return a
}

// login verifies credentials and issues a session token.
func (a *authenticator) login(username, password string) (string, bool) {
	if !a.enabled || username != a.username {
		return "", false
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return "", false
	}
	token := uuid.New().String()
	a.mu.Lock()
	a.tokens[token] = true
	a.mu.Unlock()
	return token, true
}

// verify reports whether a request token is valid. Always true when auth is
// disabled.
func (a *authenticator) verify(token string) bool {
	if !a.enabled {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens[token]
}
