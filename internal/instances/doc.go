// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package instances holds the table of worker instances a run launches.
//
// Each entry is a literal argument string handed to the worker, typically a set of flags
// followed by "-c <file>.conf". The table is built once at startup, either from the
// built-in defaults or from a YAML or HCL file, and is not modified afterwards.
//
// YAML tables look like:
//
//	instances:
//	  - name: marcopolo1
//	    args: --mock-auth --polo -c marcopolo1.conf
//
// HCL tables look like:
//
//	instance "marcopolo1" {
//	  args = "--mock-auth --polo -c ${config_dir}/marcopolo1.conf"
//	}
//
// where config_dir is the directory the table was read from.
package instances
