// Package guard gates access to authenticated-only views.
package guard

import "errors"

// LoginPath is where unauthenticated access is redirected.
const LoginPath = "/login"

var ErrLoginRequired = errors.New("login required")

type Authenticator interface {
	IsAuthenticated() bool
}

type Decision struct {
	Allowed      bool
	RedirectPath string
}

// Evaluate decides synchronously from the current session state.
func Evaluate(auth Authenticator) Decision {
	if auth.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RedirectPath: LoginPath}
}

// Require returns ErrLoginRequired when the session is unauthenticated.
func Require(auth Authenticator) error {
	if !auth.IsAuthenticated() {
		return ErrLoginRequired
	}
	return nil
}
