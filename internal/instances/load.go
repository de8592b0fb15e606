// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instances

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/marcopolo/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrLoadTable is returned when the table source cannot be read.
var ErrLoadTable = errors.New("failed to load instance table")

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load returns the table for source. An empty source means the built-in Default table.
// A source naming an existing local file is read directly, anything else is fetched
// with go-getter, so "git::https://host/repo//tables/instances.hcl?ref=main" works too.
func Load(ctx context.Context, source string) (Table, error) {
	logger := ctxlog.Logger(ctx).With("component", "instances")

	if source == "" {
		logger.Debug("using built-in instance table")
		return Default(), nil
	}

	fs := FsFactory()

	if info, err := fs.Stat(source); err == nil && info.Mode().IsRegular() {
		logger.Debug("reading local instance table", "path", source)

		data, err := afero.ReadFile(fs, source)
		if err != nil {
			return Table{}, errors.Join(ErrLoadTable, err)
		}

		dir, err := filepath.Abs(filepath.Dir(source))
		if err != nil {
			return Table{}, errors.Join(ErrLoadTable, err)
		}

		return Parse(source, data, dir)
	}

	logger.Debug("fetching instance table", "source", source)

	data, name, err := fetch(ctx, source)
	if err != nil {
		return Table{}, err
	}

	// A fetched table has no stable local directory, so config_dir is the working directory.
	wd, err := os.Getwd()
	if err != nil {
		return Table{}, errors.Join(ErrLoadTable, err)
	}

	return Parse(name, data, wd)
}
