// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"strings"

	"github.com/silt-db/silt/go/spec"
)

// Resolver replaces database aliases from the nearest .siltconfig with the
// specs they name. With no config file present, resolution is the
// identity.
type Resolver struct {
	config *Config
}

// NewResolver creates a Resolver rooted at the current working directory.
func NewResolver() *Resolver {
	c, err := FindSiltConfig(".")
	if err != nil {
		return &Resolver{}
	}
	return &Resolver{c}
}

// resolveDbSpec maps an alias to its configured url. An empty alias maps
// to the default database.
func (r *Resolver) resolveDbSpec(dbSpec string) string {
	if r.config == nil {
		return dbSpec
	}
	if dbSpec == "" {
		if dbc, ok := r.config.Db[DefaultDbAlias]; ok {
			return dbc.Url
		}
		return dbSpec
	}
	if dbc, ok := r.config.Db[dbSpec]; ok {
		return dbc.Url
	}
	return dbSpec
}

// ResolveDbSpec returns the database spec with any alias replaced.
func (r *Resolver) ResolveDbSpec(dbSpec string) string {
	return r.resolveDbSpec(dbSpec)
}

// ResolvePathSpec expands an alias-relative path spec into a full spec.
// "testds" becomes "<default db url>::testds"; "origin::testds" becomes
// "<origin url>::testds".
func (r *Resolver) ResolvePathSpec(pathSpec string) string {
	if r.config == nil {
		return pathSpec
	}
	if idx := strings.LastIndex(pathSpec, "::"); idx >= 0 {
		return r.resolveDbSpec(pathSpec[:idx]) + "::" + pathSpec[idx+len("::"):]
	}
	// No database part: the whole string is the path, against the default
	// database.
	return r.resolveDbSpec("") + "::" + pathSpec
}

// GetDatabase opens the database named by dbSpec after alias resolution.
func (r *Resolver) GetDatabase(dbSpec string) (spec.Spec, error) {
	return spec.ForDatabase(r.ResolveDbSpec(dbSpec))
}

// GetDataset opens the dataset named by dsSpec after alias resolution.
func (r *Resolver) GetDataset(dsSpec string) (spec.Spec, error) {
	return spec.ForDataset(r.ResolvePathSpec(dsSpec))
}

// GetPath opens the path named by pathSpec after alias resolution.
func (r *Resolver) GetPath(pathSpec string) (spec.Spec, error) {
	return spec.ForPath(r.ResolvePathSpec(pathSpec))
}
