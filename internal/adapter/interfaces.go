// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating
// with the nota-sync remote store and with the external calendar provider.
//
// The primary abstraction is [RemoteStore], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteStore]) plus a websocket subscription for
// realtime collection updates.
//
// Error values defined in errors.go are mapped from HTTP status codes and
// identity-provider error codes so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrUnauthorized] for 401,
// [ErrEmailExists] for a duplicate registration).
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/nota-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines transport-agnostic communication with the remote
// per-user store. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to
// the sentinel values defined in this package.
type RemoteStore interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. It should be called when a
	// persisted session is restored; SignUp and SignIn store the token
	// themselves.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or
	// an empty string if no token has been set yet.
	Token() string

	// SignUp registers a new account with the identity provider. On
	// success it stores the returned bearer token via SetToken and
	// returns the established session. Provider rejections map to the
	// auth sentinel errors ([ErrEmailExists], [ErrWeakPassword],
	// [ErrInvalidEmail]).
	SignUp(ctx context.Context, email, password string) (models.Session, error)

	// SignIn authenticates an existing account. On success it stores the
	// returned bearer token via SetToken and returns the established
	// session. Provider rejections map to the auth sentinel errors
	// ([ErrEmailNotFound], [ErrInvalidPassword], [ErrTooManyAttempts]).
	SignIn(ctx context.Context, email, password string) (models.Session, error)

	// PushCollection overwrites the whole remote collection under
	// users/{uid}/{collection} with the given JSON array.
	PushCollection(ctx context.Context, uid, collection string, records json.RawMessage) error

	// PullCollection fetches the whole remote collection as a JSON array.
	// An absent collection yields an empty array, not an error.
	PullCollection(ctx context.Context, uid, collection string) (json.RawMessage, error)

	// PutRecord writes a single record under
	// users/{uid}/{collection}/{id}. Used when replaying queued creates
	// and updates.
	PutRecord(ctx context.Context, uid, collection, id string, record json.RawMessage) error

	// DeleteRecord removes a single record from the remote collection.
	// Deleting an absent record is not an error.
	DeleteRecord(ctx context.Context, uid, collection, id string) error

	// Ping checks remote reachability with a cheap unauthenticated
	// request. Used by the network-status monitor.
	Ping(ctx context.Context) error

	// Watch opens a realtime subscription on one collection and invokes
	// onRecords with the whole-collection JSON array for every update
	// pushed by the remote. Watch blocks until ctx is cancelled or the
	// connection fails.
	Watch(ctx context.Context, uid, collection string, onRecords func(json.RawMessage)) error
}

// CalendarClient fetches calendars and events from the external calendar
// provider on behalf of the user's stored OAuth access token.
type CalendarClient interface {
	// SetAccessToken stores the OAuth bearer token used for subsequent
	// calendar requests.
	SetAccessToken(token string)

	// FetchCalendars lists the calendars visible to the token. Returns
	// [ErrCalendarAuthExpired] when the provider rejects the token.
	FetchCalendars(ctx context.Context) ([]models.Calendar, error)

	// FetchEvents lists the events of one calendar within [from, to),
	// expanded to single instances and ordered by start time. Returns
	// [ErrCalendarAuthExpired] when the provider rejects the token.
	FetchEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error)
}
