// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/nota-sync/internal/adapter"
	"github.com/MKhiriev/nota-sync/internal/app"
)

// authMessage translates the adapter's auth error into the user-facing
// message surfaced in an AuthResult.
func authMessage(err error) string {
	switch {
	case errors.Is(err, adapter.ErrEmailExists):
		return app.MsgEmailAlreadyRegistered
	case errors.Is(err, adapter.ErrWeakPassword):
		return app.MsgWeakPassword
	case errors.Is(err, adapter.ErrInvalidEmail):
		return app.MsgInvalidEmail
	case errors.Is(err, adapter.ErrEmailNotFound):
		return app.MsgNoAccountFound
	case errors.Is(err, adapter.ErrInvalidPassword):
		return app.MsgIncorrectPassword
	case errors.Is(err, adapter.ErrTooManyAttempts):
		return app.MsgTooManyAttempts
	default:
		return app.MsgAuthenticationFailed
	}
}
