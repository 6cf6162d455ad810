// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the headless sync client runtime.
//
// It wires the data store, the model cache, the sync services and the
// background workers into a single process lifecycle.
package client
