// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instances

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
)

// ErrNotAFile is returned when a fetched source turns out to be a directory.
var ErrNotAFile = errors.New("source is not a file, name the table with a //path/to/file suffix")

// fetch downloads a table with go-getter into a scratch directory and returns its content
// and file name. The scratch directory is removed before returning.
//
// A source with a "//" subdirectory naming a file, e.g.
// "git::https://host/org/repo//tables/instances.hcl?ref=main", is fetched as the directory
// holding that file. Any other source must resolve to a single file.
func fetch(ctx context.Context, src string) ([]byte, string, error) {
	scratch, err := os.MkdirTemp("", "marcopolo-instances-*")
	if err != nil {
		return nil, "", errors.Join(ErrLoadTable, err)
	}

	defer os.RemoveAll(scratch) //nolint:errcheck

	pwd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrLoadTable, err)
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(scratch, "src"),
		Pwd:     pwd,
		GetMode: getter.ModeAny,
	}

	dirSrc, name, inDir := fileInSubdir(src)
	if inDir {
		req.Src = dirSrc
		req.Dst = filepath.Join(scratch, "tree")
		req.GetMode = getter.ModeDir
	}

	client := getter.Client{DisableSymlinks: true}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrLoadTable, fmt.Errorf("fetching %s: %w", src, err))
	}

	file := res.Dst
	if inDir {
		file = filepath.Join(res.Dst, name)
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, "", errors.Join(ErrLoadTable, err)
	}

	if info.IsDir() {
		return nil, "", errors.Join(ErrLoadTable, fmt.Errorf("%w: %s", ErrNotAFile, src))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, "", errors.Join(ErrLoadTable, err)
	}

	return data, filepath.Base(file), nil
}

// fileInSubdir splits a go-getter source whose "//" subdirectory names a file into the source
// of the directory holding it and the file name. ok is false when there is no such subdirectory.
func fileInSubdir(src string) (dirSrc, name string, ok bool) {
	base, subdir := getter.SourceDirSubdir(src)
	if subdir == "" || strings.HasSuffix(subdir, "/") {
		return "", "", false
	}

	dir, name := path.Split(subdir)
	dir = strings.TrimSuffix(dir, "/")

	if dir == "" {
		return base, name, true
	}

	// SourceDirSubdir moved any query onto base; the directory goes in front of it.
	u, query, hasQuery := strings.Cut(base, "?")

	dirSrc = u + "//" + dir
	if hasQuery {
		dirSrc += "?" + query
	}

	return dirSrc, name, true
}
