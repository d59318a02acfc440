// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package datas defines and implements the database layer: datasets,
// commits, and the remote chunk protocol.
package datas

import (
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
)

const (
	MetaField    = "meta"
	ParentsField = "parents"
	ValueField   = "value"
)

var commitFieldNames = []string{MetaField, ParentsField, ValueField}

// valueCommitType is the shape every commit must satisfy: any struct named
// Commit with a meta struct, a set of refs to further commits, and a value.
var valueCommitType = types.MakeStructType("Commit",
	commitFieldNames,
	[]*types.Type{
		types.EmptyStructType,
		types.MakeSetType(types.MakeRefType(types.MakeCycleType(0))),
		types.ValueType,
	},
)

// NewCommit creates a new commit struct:
//
//	struct Commit {
//	  meta: M,
//	  parents: Set<Ref<Cycle<0>>>,
//	  value: T,
//	}
//
// The commit's declared type folds the value and meta types of its parents
// into the cyclic parents element type, so the type of a commit stays
// bounded no matter how long the chain of ancestors grows.
func NewCommit(value types.Value, parents types.Set, meta types.Struct) types.Struct {
	t := makeCommitStructType(meta.Type(), parentTargetTypes(parents), value.Type())
	return types.NewStructWithType(t, types.ValueSlice{meta, parents, value})
}

func parentTargetTypes(parents types.Set) []*types.Type {
	targetTypes := make([]*types.Type, 0, parents.Len())
	parents.IterAll(func(v types.Value) {
		targetTypes = append(targetTypes, v.(types.Ref).TargetType())
	})
	return targetTypes
}

func makeCommitStructType(metaType *types.Type, parentTypes []*types.Type, valueType *types.Type) *types.Type {
	metaTypes := []*types.Type{metaType}
	valueTypes := []*types.Type{valueType}
	for _, pt := range parentTypes {
		desc, ok := pt.Desc.(types.StructDesc)
		if !ok {
			continue
		}
		metaTypes = append(metaTypes, desc.Field(MetaField))
		valueTypes = append(valueTypes, desc.Field(ValueField))
	}

	innerMeta := types.MakeUnionType(metaTypes...)
	innerValue := types.MakeUnionType(valueTypes...)
	cyclicParents := types.MakeSetType(types.MakeRefType(types.MakeCycleType(0)))

	parentsType := cyclicParents
	if innerMeta != metaType || innerValue != valueType {
		// Ancestors carry wider value or meta types than this commit, so
		// the rolled element type differs from the outer struct.
		inner := types.MakeStructType("Commit",
			commitFieldNames,
			[]*types.Type{innerMeta, cyclicParents, innerValue},
		)
		parentsType = types.MakeSetType(types.MakeRefType(inner))
	}

	return types.MakeStructType("Commit",
		commitFieldNames,
		[]*types.Type{metaType, parentsType, valueType},
	)
}

// IsCommitType returns true if t is a valid commit type.
func IsCommitType(t *types.Type) bool {
	return types.IsSubtype(valueCommitType, t)
}

// IsCommit returns true if v is a commit struct.
func IsCommit(v types.Value) bool {
	if _, ok := v.(types.Struct); !ok {
		return false
	}
	return IsCommitType(v.Type())
}

// FindCommonAncestor returns the most recent common ancestor of c1 and c2,
// if one exists, walking both parent graphs one level at a time.
func FindCommonAncestor(c1, c2 types.Ref, vr types.ValueReader) (a types.Ref, ok bool) {
	d.PanicIfFalse(IsRefOfCommitType(c1.Type()), "first ref is not a commit: %s", c1.Type().Describe())
	d.PanicIfFalse(IsRefOfCommitType(c2.Type()), "second ref is not a commit: %s", c2.Type().Describe())

	c1Q, c2Q := types.NewSet(c1), types.NewSet(c2)
	c1Seen, c2Seen := hash.HashSet{}, hash.HashSet{}
	for !c1Q.Empty() || !c2Q.Empty() {
		noteSeen(c1Q, c1Seen)
		noteSeen(c2Q, c2Seen)
		if r, ok := firstCommon(c1Q, c2Seen); ok {
			return r, true
		}
		if r, ok := firstCommon(c2Q, c1Seen); ok {
			return r, true
		}
		c1Q = getAncestors(c1Q, vr)
		c2Q = getAncestors(c2Q, vr)
	}
	return
}

// IsRefOfCommitType returns true if t is a Ref<Commit> type.
func IsRefOfCommitType(t *types.Type) bool {
	return t.Kind() == types.RefKind && IsCommitType(t.Elem())
}

func firstCommon(q types.Set, seen hash.HashSet) (r types.Ref, ok bool) {
	q.Iter(func(v types.Value) bool {
		ref := v.(types.Ref)
		if seen.Has(ref.TargetHash()) {
			r, ok = ref, true
		}
		return ok
	})
	return
}

func noteSeen(q types.Set, seen hash.HashSet) {
	q.IterAll(func(v types.Value) {
		seen.Insert(v.(types.Ref).TargetHash())
	})
}

// getAncestors returns the union of the parents of every commit in refs.
func getAncestors(refs types.Set, vr types.ValueReader) types.Set {
	hashes := hash.HashSlice{}
	refs.IterAll(func(v types.Value) {
		hashes = append(hashes, v.(types.Ref).TargetHash())
	})

	ancestors := types.ValueSlice{}
	for _, v := range vr.ReadManyValues(hashes) {
		d.PanicIfTrue(v == nil, "missing commit chunk during ancestor walk")
		commit := v.(types.Struct)
		commit.Get(ParentsField).(types.Set).IterAll(func(p types.Value) {
			ancestors = append(ancestors, p)
		})
	}
	return types.NewSet(ancestors...)
}
