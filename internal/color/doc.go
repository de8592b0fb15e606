// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colorizes the harness status lines and log output with ANSI escape codes.
// Output is colored only when NO_COLOR is unset and either FORCE_COLOR is set
// or stdout is a terminal (golang.org/x/term).
package color
