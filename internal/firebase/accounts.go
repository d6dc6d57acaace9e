package firebase

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// authAPI is the part of *auth.Client that Accounts uses.
type authAPI interface {
	PasswordResetLink(ctx context.Context, email string) (string, error)
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// Accounts adapts the Firebase Auth client to the account operations of the user service.
type Accounts struct {
	client   authAPI
	resetURL string
}

// NewAccounts creates Accounts. When resetURL is set, reset links continue to it after the
// password is changed.
func NewAccounts(client *auth.Client, resetURL string) (*Accounts, error) {
	if client == nil {
		return nil, errors.New("NewAccounts: auth client cannot be nil")
	}
	return &Accounts{client: client, resetURL: resetURL}, nil
}

// PasswordResetLink generates an out-of-band password reset link for email.
func (a *Accounts) PasswordResetLink(ctx context.Context, email string) (string, error) {
	var (
		link string
		err  error
	)
	if a.resetURL != "" {
		link, err = a.client.PasswordResetLinkWithSettings(ctx, email, &auth.ActionCodeSettings{URL: a.resetURL})
	} else {
		link, err = a.client.PasswordResetLink(ctx, email)
	}
	if err != nil {
		return "", fmt.Errorf("auth.PasswordResetLink: %w", err)
	}
	return link, nil
}

// DeleteUser removes the auth account. An account that no longer exists is not an error.
func (a *Accounts) DeleteUser(ctx context.Context, uid string) error {
	if err := a.client.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("auth.DeleteUser: %w", err)
	}
	return nil
}
