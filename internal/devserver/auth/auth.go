// Package auth guards the devserver's websocket upgrade endpoint with a single shared token,
// hashed at rest the same way the teacher's srv/auth package hashes user credentials (bcrypt
// rather than a reversible scheme, so the token file on disk is not itself a usable secret).
package auth

import (
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vamos-lang/vamosc/internal/verr"
)

// HashToken bcrypt-hashes a plaintext watch token for storage (e.g. in a devserver config file).
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", verr.Wrap(err, "hash watch token")
	}
	return string(h), nil
}

// Verify reports whether token matches hash, as produced by HashToken.
func Verify(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// Checker authorizes an incoming `vamosc watch` client connection.
type Checker struct {
	hash string
}

// LoadChecker reads a bcrypt hash from path (as written by HashToken) and returns a Checker. A
// missing file (or an empty path) means the devserver runs with no authorization check.
func LoadChecker(path string) (*Checker, error) {
	if path == "" {
		return &Checker{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Checker{}, nil
		}
		return nil, &verr.IOError{Path: path, Op: "read", Err: err}
	}
	return &Checker{hash: strings.TrimSpace(string(data))}, nil
}

// Allow reports whether token authorizes the request. An empty Checker (no hash file configured)
// allows every request.
func (c *Checker) Allow(token string) bool {
	if c.hash == "" {
		return true
	}
	return Verify(c.hash, token)
}
