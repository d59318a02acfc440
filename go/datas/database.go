// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"errors"
	"io"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
)

// Database provides versioned storage for Silt values. Each Database
// instance has one root Map<String, Ref<Commit>> naming the current head
// of each dataset; commits advance a dataset's head under an optimistic
// compare-and-set of the root.
type Database interface {
	types.ValueReadWriter
	io.Closer

	// Datasets returns the root map of datasets.
	Datasets() types.Map

	// GetDataset returns a handle on the dataset named datasetID.
	GetDataset(datasetID string) Dataset

	// Commit updates the commit that ds points at, adding a new commit with
	// the given value and options. If parents is not given, the current
	// head is the only parent. The new Dataset is returned; if the commit
	// is not a descendant of the current head, the error is ErrMergeNeeded
	// and the returned Dataset carries the latest head.
	Commit(ds Dataset, v types.Value, opts CommitOptions) (Dataset, error)

	// CommitValue is Commit with default options.
	CommitValue(ds Dataset, v types.Value) (Dataset, error)

	// Delete removes the dataset named ds.ID() from the root map.
	Delete(ds Dataset) (Dataset, error)

	// Rebase brings the cached view of the root up to date with the
	// backing store.
	Rebase()

	// BatchStore exposes the underlying BatchStore.
	BatchStore() types.BatchStore
}

// CommitOptions are the optional pieces of a commit: explicit parents and
// a meta struct.
type CommitOptions struct {
	Parents types.Set
	Meta    types.Struct
}

var (
	// ErrMergeNeeded is returned by Commit when the commit being written is
	// not a descendant of the dataset's current head.
	ErrMergeNeeded = errors.New("Merge needed")
)

// NewDatabase creates a Database backed by a local ChunkStore.
func NewDatabase(cs chunks.ChunkStore) Database {
	return newDatabase(types.NewBatchStoreAdaptor(cs))
}

// NewRemoteDatabase creates a Database backed by a remote server speaking
// the chunk protocol.
func NewRemoteDatabase(baseURL, auth string) Database {
	return newDatabase(newHTTPBatchStore(baseURL, auth))
}

// NewDatabaseWithBatchStore is for clients which need to interpose on the
// BatchStore.
func NewDatabaseWithBatchStore(bs types.BatchStore) Database {
	return newDatabase(bs)
}

type database struct {
	*types.ValueStore
	rootRef  hash.Hash
	datasets *types.Map
}

func newDatabase(bs types.BatchStore) *database {
	return &database{ValueStore: types.NewValueStore(bs)}
}

func (db *database) Datasets() types.Map {
	if db.datasets == nil {
		rootRef := db.BatchStore().Root()
		m := db.datasetsFromRef(rootRef)
		db.rootRef = rootRef
		db.datasets = &m
	}
	return *db.datasets
}

func (db *database) datasetsFromRef(rootRef hash.Hash) types.Map {
	if rootRef.IsEmpty() {
		return types.NewMap()
	}
	return db.ReadValue(rootRef).(types.Map)
}

func (db *database) Rebase() {
	rootRef := db.BatchStore().Root()
	if rootRef == db.rootRef {
		return
	}
	m := db.datasetsFromRef(rootRef)
	db.rootRef = rootRef
	db.datasets = &m
}

func (db *database) GetDataset(datasetID string) Dataset {
	return newDataset(db, datasetID)
}

func (db *database) CommitValue(ds Dataset, v types.Value) (Dataset, error) {
	return db.Commit(ds, v, CommitOptions{})
}

func (db *database) Commit(ds Dataset, v types.Value, opts CommitOptions) (Dataset, error) {
	err := db.doCommit(ds.ID(), db.buildNewCommit(ds, v, opts))
	return db.GetDataset(ds.ID()), err
}

func (db *database) buildNewCommit(ds Dataset, v types.Value, opts CommitOptions) types.Struct {
	parents := opts.Parents
	if parents.IsZeroValue() {
		parents = types.NewSet()
		if headRef, ok := ds.MaybeHeadRef(); ok {
			parents = parents.Insert(headRef)
		}
	} else {
		parents.IterAll(func(r types.Value) {
			db.validateRefAsCommit(r.(types.Ref))
		})
	}

	meta := opts.Meta
	if meta.IsZeroValue() {
		meta = types.EmptyStruct
	}
	return NewCommit(v, parents, meta)
}

// doCommit manages concurrent access the single logical piece of mutable
// state: the current root. doCommit is optimistic in that it is attempting
// to update head making the assumption that currentRootRef is the hash of
// the current head. The call to UpdateRoot below will fail if that
// assumption fails (e.g. because of a race with another writer) and the
// entire algorithm must be tried again.
func (db *database) doCommit(datasetID string, commit types.Struct) error {
	d.PanicIfFalse(IsCommit(commit), "can only commit Commit structs")
	commitRef := db.WriteValue(commit)

	for {
		currentRootRef := db.BatchStore().Root()
		datasets := db.datasetsFromRef(currentRootRef)

		// If there's nothing in the DB yet, skip all this logic.
		if !currentRootRef.IsEmpty() {
			if r, ok := datasets.MaybeGet(types.String(datasetID)); ok {
				head := r.(types.Ref)
				if commitRef.Equals(head) {
					return nil
				}
				// Allow only fast-forward commits. The caller sees the
				// refreshed head on the dataset handed back with the error.
				if !descendsFrom(commit, head, db) {
					db.rootRef = currentRootRef
					db.datasets = &datasets
					return ErrMergeNeeded
				}
			}
		}

		newDatasets := datasets.Set(types.String(datasetID), commitRef)
		newRootRef := db.WriteValue(newDatasets).TargetHash()
		db.Flush()
		if db.BatchStore().UpdateRoot(newRootRef, currentRootRef) {
			db.rootRef = newRootRef
			db.datasets = &newDatasets
			return nil
		}
		// Race against another writer; refetch the root and try again.
	}
}

func (db *database) Delete(ds Dataset) (Dataset, error) {
	err := db.doDelete(ds.ID())
	return db.GetDataset(ds.ID()), err
}

func (db *database) doDelete(datasetID string) error {
	for {
		currentRootRef := db.BatchStore().Root()
		datasets := db.datasetsFromRef(currentRootRef)
		if !datasets.Has(types.String(datasetID)) {
			return nil
		}

		newDatasets := datasets.Remove(types.String(datasetID))
		newRootRef := db.WriteValue(newDatasets).TargetHash()
		db.Flush()
		if db.BatchStore().UpdateRoot(newRootRef, currentRootRef) {
			db.rootRef = newRootRef
			db.datasets = &newDatasets
			return nil
		}
	}
}

// descendsFrom determines whether commit descends from ancestorRef,
// expanding the parent frontier one level at a time.
func descendsFrom(commit types.Struct, ancestorRef types.Ref, vr types.ValueReader) bool {
	ancestors := commit.Get(ParentsField).(types.Set)
	for !ancestors.Has(ancestorRef) {
		if ancestors.Empty() {
			return false
		}
		ancestors = getAncestors(ancestors, vr)
	}
	return true
}

func (db *database) validateRefAsCommit(r types.Ref) types.Struct {
	v := db.ReadValue(r.TargetHash())
	d.PanicIfTrue(v == nil, "unable to validate ref; %s not present", r.TargetHash())
	d.PanicIfFalse(IsCommit(v), "can only commit to datasets which contain commits")
	return v.(types.Struct)
}
