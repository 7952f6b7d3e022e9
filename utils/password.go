package utils

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the account does not exist so that
// unknown emails cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campus-essentials-dummy"), bcrypt.DefaultCost)

// HashPassword runs bcrypt off the caller's goroutine and gives up when ctx
// is done.
func HashPassword(ctx context.Context, password string) (string, error) {
	type result struct {
		hash []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		ch <- result{h, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return string(r.hash), r.err
	}
}

// CheckPasswordHash reports whether password matches hash. An empty hash is
// compared against a dummy value and never matches.
func CheckPasswordHash(ctx context.Context, password, hash string) (bool, error) {
	target := []byte(hash)
	if hash == "" {
		target = dummyHash
	}

	ch := make(chan error, 1)
	go func() {
		ch <- bcrypt.CompareHashAndPassword(target, []byte(password))
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-ch:
		return err == nil && hash != "", nil
	}
}
