// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the operator dashboard process.
//
// It checks that the relay answers, then runs the terminal UI until the
// operator quits or the process receives a stop signal.
package client
