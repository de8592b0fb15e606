// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger is a pretty console handler writing to stderr. Its level comes from
// the environment variable named after the executable, e.g. MARCOPOLO_LOG_LEVEL, and is
// one of DEBUG, INFO, WARN or ERROR. Anything else means WARN.
package ctxlog
