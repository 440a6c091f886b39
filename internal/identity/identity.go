// Package identity looks up users and computes the hash that authenticates user-scoped graph requests.
package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// ErrUserNotFound is returned by LookupUser when no user has the given id.
var ErrUserNotFound = errors.New("user not found")

// Directory resolves user ids backed by a UserStore.
type Directory struct {
	users storage.UserStore
}

// NewDirectory creates a new Directory.
func NewDirectory(users storage.UserStore) *Directory {
	return &Directory{users: users}
}

// LookupUser returns the user with the given id, or ErrUserNotFound.
func (d *Directory) LookupUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return u, nil
}

// Hasher computes user authentication hashes with a server secret.
type Hasher struct {
	secret []byte
}

// NewHasher creates a Hasher. The secret must not be empty.
func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, errors.New("auth secret is empty")
	}
	return &Hasher{secret: []byte(secret)}, nil
}

// UserHash returns hex(HMAC-SHA256(secret, "id|created_unix")).
func (h *Hasher) UserHash(u *domain.User) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(strconv.FormatInt(u.ID, 10) + "|" + strconv.FormatInt(u.CreatedAt.Unix(), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether hash matches the user's expected hash, in constant time.
func (h *Hasher) Verify(u *domain.User, hash string) bool {
	return hmac.Equal([]byte(h.UserHash(u)), []byte(hash))
}
