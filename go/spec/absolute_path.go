// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package spec implements parsing of database, dataset, and value specs,
// the strings the CLI and config layer use to name things: "mem",
// "https://demo.example/foo::ds.value[0]", "mem::#abc...".
package spec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/datas"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
)

// AbsolutePath is a Path relative to a whole Database: it starts at either
// a dataset head or an explicit #hash, and descends from there.
type AbsolutePath struct {
	Dataset string
	Hash    hash.Hash
	Path    types.Path
}

// NewAbsolutePath parses str. The form is either `dataset[path]` or
// `#hash[path]`.
func NewAbsolutePath(str string) (AbsolutePath, error) {
	if len(str) == 0 {
		return AbsolutePath{}, errors.New("Empty path")
	}

	var h hash.Hash
	var dataset string
	var pathStr string

	if str[0] == '#' {
		tail := str[1:]
		if len(tail) < hash.StringLen {
			return AbsolutePath{}, fmt.Errorf("Invalid hash: %s", tail)
		}
		hashStr := tail[:hash.StringLen]
		var ok bool
		if h, ok = hash.MaybeParse(hashStr); !ok {
			return AbsolutePath{}, fmt.Errorf("Invalid hash: %s", hashStr)
		}
		pathStr = tail[hash.StringLen:]
	} else {
		idx := len(str)
		if sep := strings.IndexAny(str, ".["); sep >= 0 {
			idx = sep
		}
		dataset = str[:idx]
		pathStr = str[idx:]
		if !datas.DatasetFullRe.MatchString(dataset) {
			return AbsolutePath{}, fmt.Errorf("Invalid dataset name: %s", str)
		}
	}

	var path types.Path
	if len(pathStr) > 0 {
		var err error
		path, err = types.ParsePath(pathStr)
		if err != nil {
			return AbsolutePath{}, err
		}
	}

	return AbsolutePath{Dataset: dataset, Hash: h, Path: path}, nil
}

// Resolve returns the value the path names in db, or nil.
func (p AbsolutePath) Resolve(db datas.Database) (val types.Value) {
	switch {
	case p.Dataset != "":
		if commit, ok := db.GetDataset(p.Dataset).MaybeHead(); ok {
			val = commit
		}
	case !p.Hash.IsEmpty():
		val = db.ReadValue(p.Hash)
	default:
		d.Panic("unreachable absolute path")
	}

	if val == nil {
		return nil
	}
	return p.Path.Resolve(val, db)
}

func (p AbsolutePath) IsEmpty() bool {
	return p.Dataset == "" && p.Hash.IsEmpty()
}

func (p AbsolutePath) String() (str string) {
	if p.IsEmpty() {
		return ""
	}
	if p.Dataset != "" {
		str = p.Dataset
	} else {
		str = "#" + p.Hash.String()
	}
	return str + p.Path.String()
}
