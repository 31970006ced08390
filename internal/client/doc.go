// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client application runtime.
//
// It wires the local store, the remote adapters, the sync services, and the
// network-status monitor into a single process lifecycle.
package client
