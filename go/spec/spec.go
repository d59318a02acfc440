// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package spec

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/datas"
	"github.com/silt-db/silt/go/types"
)

// SpecOptions customize how a spec is turned into a live database.
type SpecOptions struct {
	// Authorization token for http(s) databases, sent as the access_token
	// query parameter on root updates.
	Authorization string
}

// Spec locates a database, and in it potentially a dataset or value.
//
//	Spec    := DBSpec ('::' Tail)?
//	DBSpec  := 'mem' | ('http'|'https') '://' netloc
//	Tail    := DatasetName | '#' Hash | AbsolutePath
type Spec struct {
	// Protocol is one of "mem", "http", "https".
	Protocol string

	// DatabaseName is the name of the database; empty for "mem", the
	// host + path (plus "?query", if any) for remote databases.
	DatabaseName string

	// Options are the options that the spec was constructed with.
	Options SpecOptions

	// Path within the database, if any.
	Path AbsolutePath

	db *datas.Database
}

func newSpec(dbSpec string, opts SpecOptions) (Spec, error) {
	protocol, dbName, err := parseDatabaseSpec(dbSpec)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Protocol:     protocol,
		DatabaseName: dbName,
		Options:      opts,
		db:           new(datas.Database),
	}, nil
}

// ForDatabase parses a spec for a Database.
func ForDatabase(spec string) (Spec, error) {
	return ForDatabaseOpts(spec, SpecOptions{})
}

// ForDatabaseOpts parses a spec for a Database with spec options.
func ForDatabaseOpts(spec string, opts SpecOptions) (Spec, error) {
	if strings.Contains(spec, "::") {
		return Spec{}, fmt.Errorf("Too many parts in database spec: %s", spec)
	}
	return newSpec(spec, opts)
}

// ForDataset parses a spec for a Dataset.
func ForDataset(spec string) (Spec, error) {
	return ForDatasetOpts(spec, SpecOptions{})
}

// ForDatasetOpts parses a spec for a Dataset with spec options.
func ForDatasetOpts(spec string, opts SpecOptions) (Spec, error) {
	dbSpec, tail, err := splitDatabaseSpec(spec)
	if err != nil {
		return Spec{}, err
	}

	sp, err := newSpec(dbSpec, opts)
	if err != nil {
		return Spec{}, err
	}

	if !datas.DatasetFullRe.MatchString(tail) {
		return Spec{}, fmt.Errorf("Invalid dataset name: %s", tail)
	}
	sp.Path = AbsolutePath{Dataset: tail}
	return sp, nil
}

// ForPath parses a spec for a path to a Value.
func ForPath(spec string) (Spec, error) {
	return ForPathOpts(spec, SpecOptions{})
}

// ForPathOpts parses a spec for a path to a Value with spec options.
func ForPathOpts(spec string, opts SpecOptions) (Spec, error) {
	dbSpec, tail, err := splitDatabaseSpec(spec)
	if err != nil {
		return Spec{}, err
	}

	sp, err := newSpec(dbSpec, opts)
	if err != nil {
		return Spec{}, err
	}

	sp.Path, err = NewAbsolutePath(tail)
	if err != nil {
		return Spec{}, err
	}
	return sp, nil
}

func splitDatabaseSpec(spec string) (string, string, error) {
	lastIdx := strings.LastIndex(spec, "::")
	if lastIdx == -1 {
		return "", "", fmt.Errorf("Missing :: separator between database and path: %s", spec)
	}
	return spec[:lastIdx], spec[lastIdx+len("::"):], nil
}

func parseDatabaseSpec(spec string) (protocol string, name string, err error) {
	if len(spec) == 0 {
		return "", "", errors.New("Empty spec")
	}

	if spec == "mem" {
		return "mem", "", nil
	}

	colonIdx := strings.Index(spec, ":")
	if colonIdx == -1 {
		return "", "", fmt.Errorf("Invalid database spec: %s", spec)
	}

	scheme := spec[:colonIdx]
	switch scheme {
	case "http", "https":
		u, perr := url.Parse(spec)
		if perr != nil || u.Host == "" {
			return "", "", fmt.Errorf("Invalid URL: %s", spec)
		}
		name = u.Host + u.Path
		if u.RawQuery != "" {
			name += "?" + u.RawQuery
		}
		return scheme, name, nil
	case "ldb":
		return "", "", fmt.Errorf("The ldb protocol is no longer supported: %s", spec)
	case "mem":
		return "", "", fmt.Errorf(`In-memory databases are spelled "mem", not "mem:": %s`, spec)
	default:
		return "", "", fmt.Errorf("Invalid database protocol %s in %s", scheme, spec)
	}
}

// Href returns the URL this spec points at, if it is a remote spec.
func (sp Spec) Href() string {
	switch sp.Protocol {
	case "http", "https":
		return sp.Protocol + "://" + sp.DatabaseName
	default:
		return ""
	}
}

// GetDatabase returns the Database the spec points to. The database is
// lazily opened and cached, so that a Spec can be created without doing
// any IO.
func (sp Spec) GetDatabase() datas.Database {
	if *sp.db == nil {
		*sp.db = sp.createDatabase()
	}
	return *sp.db
}

func (sp Spec) createDatabase() datas.Database {
	switch sp.Protocol {
	case "mem":
		return datas.NewDatabase(chunks.NewMemoryStore())
	case "http", "https":
		return datas.NewRemoteDatabase(sp.Href(), sp.Options.Authorization)
	default:
		panic("unreachable")
	}
}

// GetDataset returns the Dataset in the spec; the spec must have been
// parsed with ForDataset.
func (sp Spec) GetDataset() datas.Dataset {
	return sp.GetDatabase().GetDataset(sp.Path.Dataset)
}

// GetValue returns the value the spec's path points at, or nil.
func (sp Spec) GetValue() types.Value {
	if sp.Path.IsEmpty() {
		return nil
	}
	return sp.Path.Resolve(sp.GetDatabase())
}

// String returns the spec in its parseable form.
func (sp Spec) String() string {
	s := sp.Protocol
	if s != "mem" {
		s += "://" + sp.DatabaseName
	}
	if !sp.Path.IsEmpty() {
		s += "::" + sp.Path.String()
	}
	return s
}

// Close closes the database, if it was ever opened.
func (sp Spec) Close() error {
	db := *sp.db
	if db == nil {
		return nil
	}
	*sp.db = nil
	return db.Close()
}
