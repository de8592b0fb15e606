// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instances

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrInvalidYaml is returned when a YAML table cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidHcl is returned when an HCL table cannot be parsed or decoded.
	ErrInvalidHcl = errors.New("invalid HCL")
	// ErrUnknownFormat is returned when the file extension is not a supported table format.
	ErrUnknownFormat = errors.New("unknown instance table format")
)

// ConfigDirVar is the HCL variable holding the directory the table was read from.
const ConfigDirVar = "config_dir"

type yamlDocument struct {
	Instances []Entry `yaml:"instances"`
}

type hclDocument struct {
	Instances []hclInstance `hcl:"instance,block"`
}

type hclInstance struct {
	Name string `hcl:"name,label"`
	Args string `hcl:"args"`
}

// Parse decodes a table, choosing the format from the extension of filename
// (.yaml, .yml or .hcl). configDir is exposed to HCL expressions as config_dir.
func Parse(filename string, data []byte, configDir string) (Table, error) {
	var (
		t   Table
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		t, err = ParseYAML(data)
	case ".hcl":
		t, err = ParseHCL(filename, data, configDir)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
	}

	if err != nil {
		return Table{}, err
	}

	if err := t.Validate(); err != nil {
		return Table{}, err
	}

	return t, nil
}

// ParseYAML decodes a YAML table. Unknown fields are rejected.
func ParseYAML(data []byte) (Table, error) {
	var doc yamlDocument
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return Table{Entries: doc.Instances}, nil
}

// ParseHCL decodes an HCL table made of instance blocks.
func ParseHCL(filename string, data []byte, configDir string) (Table, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Table{}, errors.Join(ErrInvalidHcl, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			ConfigDirVar: cty.StringVal(configDir),
		},
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &doc); diags.HasErrors() {
		return Table{}, errors.Join(ErrInvalidHcl, diags)
	}

	t := Table{Entries: make([]Entry, 0, len(doc.Instances))}
	for _, inst := range doc.Instances {
		t.Entries = append(t.Entries, Entry(inst))
	}

	return t, nil
}
