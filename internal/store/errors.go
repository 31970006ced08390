// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrTodoNotFound   = errors.New("todo not found")
	ErrFolderNotFound = errors.New("folder not found")

	// ErrCacheMiss is returned for absent and for expired cache entries.
	ErrCacheMiss = errors.New("cache entry not found")

	ErrUnknownCollection = errors.New("unknown collection")
)
