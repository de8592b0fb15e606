// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries run events from the supervisor and monitor to whoever
// renders them. The harness renders them as the status lines an operator watches.
package progress
