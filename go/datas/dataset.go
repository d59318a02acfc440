// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"regexp"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/types"
)

// DatasetRe is a regexp that matches a legal Dataset name anywhere within
// a larger string.
var DatasetRe = regexp.MustCompile(`[a-zA-Z0-9\-_/]+`)

// DatasetFullRe is a regexp that matches a only a target string that is
// entirely legal Dataset name.
var DatasetFullRe = regexp.MustCompile("^" + DatasetRe.String() + "$")

// Dataset is a named mutable pointer into the commit graph of a Database.
type Dataset struct {
	db Database
	id string
}

func newDataset(db Database, id string) Dataset {
	d.PanicIfFalse(DatasetFullRe.MatchString(id), "Invalid dataset name: %s", id)
	return Dataset{db, id}
}

// Database returns the Database this Dataset is tied to.
func (ds Dataset) Database() Database {
	return ds.db
}

// ID returns the name of this Dataset.
func (ds Dataset) ID() string {
	return ds.id
}

// MaybeHeadRef returns the ref of the current head commit, if present.
func (ds Dataset) MaybeHeadRef() (types.Ref, bool) {
	if r, ok := ds.db.Datasets().MaybeGet(types.String(ds.id)); ok {
		return r.(types.Ref), true
	}
	return types.Ref{}, false
}

// HeadRef returns the ref of the current head commit; the dataset must
// have a head.
func (ds Dataset) HeadRef() types.Ref {
	r, ok := ds.MaybeHeadRef()
	d.PanicIfFalse(ok, "dataset %s has no head", ds.id)
	return r
}

// MaybeHead returns the current head commit struct, if present.
func (ds Dataset) MaybeHead() (types.Struct, bool) {
	r, ok := ds.MaybeHeadRef()
	if !ok {
		return types.Struct{}, false
	}
	v := ds.db.ReadValue(r.TargetHash())
	d.PanicIfTrue(v == nil, "dataset %s head chunk %s is missing", ds.id, r.TargetHash())
	return v.(types.Struct), true
}

// Head returns the current head commit struct; the dataset must have a
// head.
func (ds Dataset) Head() types.Struct {
	c, ok := ds.MaybeHead()
	d.PanicIfFalse(ok, "dataset %s has no head", ds.id)
	return c
}

// MaybeHeadValue returns the value of the head commit, if present.
func (ds Dataset) MaybeHeadValue() (types.Value, bool) {
	if c, ok := ds.MaybeHead(); ok {
		return c.Get(ValueField), true
	}
	return nil, false
}

// HeadValue returns the value of the head commit; the dataset must have a
// head.
func (ds Dataset) HeadValue() types.Value {
	return ds.Head().Get(ValueField)
}
