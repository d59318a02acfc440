// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/types"
)

func TestExplicitBranchUsingDatasets(t *testing.T) {
	assert := assert.New(t)
	id1 := "testdataset"
	id2 := "othertestdataset"
	store := NewDatabase(chunks.NewMemoryStore())
	defer store.Close()

	ds1 := store.GetDataset(id1)

	// ds1: |a|
	a := types.String("a")
	ds1, err := store.CommitValue(ds1, a)
	assert.NoError(err)
	assert.True(ds1.Head().Get(ValueField).Equals(a))

	// ds1: |a|
	//        \ds2
	ds2 := store.GetDataset(id2)
	ds2, err = store.Commit(ds2, ds1.HeadValue(), CommitOptions{Parents: types.NewSet(ds1.HeadRef())})
	assert.NoError(err)
	assert.True(ds2.Head().Get(ValueField).Equals(a))

	// ds1: |a| <- |b|
	b := types.String("b")
	ds1, err = store.CommitValue(ds1, b)
	assert.NoError(err)
	assert.True(ds1.Head().Get(ValueField).Equals(b))

	// ds1: |a|    <- |b|
	//        \ds2 <- |c|
	c := types.String("c")
	ds2, err = store.CommitValue(ds2, c)
	assert.NoError(err)
	assert.True(ds2.Head().Get(ValueField).Equals(c))

	// ds1: |a|    <- |b| <--|d|
	//        \ds2 <- |c| <--/
	mergeParents := types.NewSet(types.NewRef(ds1.Head()), types.NewRef(ds2.Head()))
	d := types.String("d")
	ds2, err = store.Commit(ds2, d, CommitOptions{Parents: mergeParents})
	assert.NoError(err)
	assert.True(ds2.Head().Get(ValueField).Equals(d))

	ds1, err = store.Commit(ds1, d, CommitOptions{Parents: mergeParents})
	assert.NoError(err)
	assert.True(ds1.Head().Get(ValueField).Equals(d))
}

func TestTwoClientsWithEmptyDataset(t *testing.T) {
	assert := assert.New(t)
	id1 := "testdataset"
	store := NewDatabase(chunks.NewMemoryStore())
	defer store.Close()

	dsx := store.GetDataset(id1)
	dsy := store.GetDataset(id1)

	// dsx: || -> |a|
	a := types.String("a")
	dsx, err := store.CommitValue(dsx, a)
	assert.NoError(err)
	assert.True(dsx.Head().Get(ValueField).Equals(a))

	// dsy: || -> |b|
	_, ok := dsy.MaybeHead()
	assert.True(ok) // dsy reads through the same database, so it sees |a|
	b := types.String("b")
	dsy, err = store.Commit(dsy, b, CommitOptions{Parents: types.NewSet()})
	assert.Error(err)
	// Commit failed, but dsy now has the latest head, so we should be able
	// to just try again.
	// dsy: |a| -> |b|
	dsy, err = store.CommitValue(dsy, b)
	assert.NoError(err)
	assert.True(dsy.Head().Get(ValueField).Equals(b))
}

func TestTwoClientsWithNonEmptyDataset(t *testing.T) {
	assert := assert.New(t)
	id1 := "testdataset"
	storage := &chunks.TestStorage{}

	dbx := NewDatabase(storage.NewView())
	defer dbx.Close()
	dby := NewDatabase(storage.NewView())
	defer dby.Close()

	a := types.String("a")
	{
		// ds1: |a|
		ds1, err := dbx.CommitValue(dbx.GetDataset(id1), a)
		assert.NoError(err)
		assert.True(ds1.Head().Get(ValueField).Equals(a))
	}

	dsx := dbx.GetDataset(id1)
	dsy := dby.GetDataset(id1)

	// dsx: |a| -> |b|
	b := types.String("b")
	dsx, err := dbx.CommitValue(dsx, b)
	assert.NoError(err)
	assert.True(dsx.Head().Get(ValueField).Equals(b))

	// dsy: || -> |c| requires a retry: dby's view of the root predates |a|,
	// so the new commit has no parents, but the head is now |b|.
	c := types.String("c")
	dsy, err = dby.CommitValue(dsy, c)
	assert.Error(err)
	assert.Equal(ErrMergeNeeded, err)
	assert.True(dsy.Head().Get(ValueField).Equals(b))

	dsy, err = dby.CommitValue(dsy, c)
	assert.NoError(err)
	assert.True(dsy.Head().Get(ValueField).Equals(c))
}

func TestIdValidation(t *testing.T) {
	assert := assert.New(t)
	store := NewDatabase(chunks.NewMemoryStore())
	defer store.Close()

	invalidDatasetNames := []string{" ", "", "$", "#", ":", "\n", "💩"}
	for _, id := range invalidDatasetNames {
		assert.Panics(func() {
			store.GetDataset(id)
		})
	}

	validDatasetNames := []string{"f", "fo/bar", "f1", "1f", "f-1", "f_1"}
	for _, id := range validDatasetNames {
		assert.NotPanics(func() {
			store.GetDataset(id)
		})
	}
}

func TestHeadValueFunctions(t *testing.T) {
	assert := assert.New(t)
	store := NewDatabase(chunks.NewMemoryStore())
	defer store.Close()

	ds := store.GetDataset("ds")
	_, ok := ds.MaybeHeadRef()
	assert.False(ok)
	_, ok = ds.MaybeHeadValue()
	assert.False(ok)
	assert.Panics(func() { ds.Head() })
	assert.Panics(func() { ds.HeadRef() })

	ds, err := store.CommitValue(ds, types.String("v"))
	assert.NoError(err)
	assert.True(ds.HeadValue().Equals(types.String("v")))
	assert.Equal(uint64(1), ds.HeadRef().Height())
	assert.Equal("ds", ds.ID())
	assert.Equal(store, ds.Database())
}
