// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"regexp"
	"sort"
	"sync"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// The process-wide type cache. Interning only grows; types are immutable
// after insertion.
var staticTypeCache = newTypeCache()

// Predeclared primitive types.
var (
	BoolType   = staticTypeCache.getPrimitiveType(BoolKind)
	NumberType = staticTypeCache.getPrimitiveType(NumberKind)
	StringType = staticTypeCache.getPrimitiveType(StringKind)
	BlobType   = staticTypeCache.getPrimitiveType(BlobKind)
	TypeType   = staticTypeCache.getPrimitiveType(TypeKind)
	ValueType  = staticTypeCache.getPrimitiveType(ValueKind)

	EmptyStructType = MakeStructType("", nil, nil)
)

type typeCache struct {
	identTable *identTable
	trieRoots  map[Kind]*typeTrie
	nextId     uint32
	mu         sync.Mutex
}

func newTypeCache() *typeCache {
	return &typeCache{
		identTable: newIdentTable(),
		trieRoots:  map[Kind]*typeTrie{},
		nextId:     256, // reserve plenty of ids for primitives
	}
}

// The trie interns types by constructor tag (the trie root's kind) and the
// identities of child types and names.
type typeTrie struct {
	t       *Type
	entries map[uint32]*typeTrie
}

func (tct *typeTrie) Traverse(typeId uint32) *typeTrie {
	if tct.entries == nil {
		tct.entries = map[uint32]*typeTrie{}
	}
	if t, ok := tct.entries[typeId]; ok {
		return t
	}
	t := &typeTrie{}
	tct.entries[typeId] = t
	return t
}

// identTable assigns a stable uint32 to each name used in struct and field
// names so that names can participate in trie traversal.
type identTable struct {
	entries map[string]uint32
	nextId  uint32
}

func newIdentTable() *identTable {
	return &identTable{entries: map[string]uint32{}}
}

func (it *identTable) GetId(ident string) uint32 {
	id, ok := it.entries[ident]
	if !ok {
		id = it.nextId
		it.nextId++
		it.entries[ident] = id
	}
	return id
}

func (tc *typeCache) Lock()   { tc.mu.Lock() }
func (tc *typeCache) Unlock() { tc.mu.Unlock() }

func (tc *typeCache) nextTypeId() uint32 {
	next := tc.nextId
	tc.nextId++
	return next
}

func (tc *typeCache) root(kind Kind) *typeTrie {
	trie, ok := tc.trieRoots[kind]
	if !ok {
		trie = &typeTrie{}
		tc.trieRoots[kind] = trie
	}
	return trie
}

func (tc *typeCache) getPrimitiveType(k Kind) *Type {
	tc.Lock()
	defer tc.Unlock()
	trie := tc.root(k)
	if trie.t == nil {
		trie.t = newType(PrimitiveDesc(k), uint32(k))
	}
	return trie.t
}

func (tc *typeCache) getCompoundType(kind Kind, elemTypes ...*Type) *Type {
	trie := tc.root(kind)
	for _, t := range elemTypes {
		trie = trie.Traverse(t.id)
	}
	if trie.t == nil {
		trie.t = newType(CompoundDesc{kind, elemTypes}, tc.nextTypeId())
	}
	return trie.t
}

func (tc *typeCache) getCycleType(level uint32) *Type {
	trie := tc.root(CycleKind).Traverse(level)
	if trie.t == nil {
		trie.t = newType(CycleDesc(level), tc.nextTypeId())
	}
	return trie.t
}

func (tc *typeCache) makeStructType(name string, fieldNames []string, fieldTypes []*Type) *Type {
	d.PanicIfFalse(len(fieldNames) == len(fieldTypes), "len(fieldNames) != len(fieldTypes)")
	verifyStructName(name)
	verifyFieldNames(fieldNames)

	trie := tc.root(StructKind).Traverse(tc.identTable.GetId(name))
	for i, fn := range fieldNames {
		trie = trie.Traverse(tc.identTable.GetId(fn))
		trie = trie.Traverse(fieldTypes[i].id)
	}

	if trie.t == nil {
		fs := make([]field, len(fieldNames))
		for i, fn := range fieldNames {
			fs[i] = field{fn, fieldTypes[i]}
		}
		t := newType(StructDesc{name, fs}, tc.nextTypeId())
		if hasCycles(t) {
			checkForUnrolledCycle(t)
		}
		trie.t = t
	}

	return trie.t
}

func (tc *typeCache) makeUnionType(elemTypes ...*Type) *Type {
	seen := map[*Type]struct{}{}
	ts := make(typeSlice, 0, len(elemTypes))

	var flatten func(tl []*Type)
	flatten = func(tl []*Type) {
		for _, t := range tl {
			if t.Kind() == UnionKind {
				flatten(t.Desc.(CompoundDesc).ElemTypes)
				continue
			}
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				ts = append(ts, t)
			}
		}
	}
	flatten(elemTypes)

	if len(ts) == 1 {
		return ts[0]
	}
	sort.Sort(ts)
	return tc.getCompoundType(UnionKind, ts...)
}

// typeSlice sorts by oid, giving unions their canonical member order.
func (ts typeSlice) Len() int           { return len(ts) }
func (ts typeSlice) Swap(i, j int)      { ts[i], ts[j] = ts[j], ts[i] }
func (ts typeSlice) Less(i, j int) bool { return oid(ts[i]).Less(oid(ts[j])) }

// oid computes (and memoizes) the order id of t: a hash of an encoding of t
// in which union members are combined by XOR, so that the oid is invariant
// to member order.
func oid(t *Type) hash.Hash {
	if t.oid != nil {
		return *t.oid
	}
	w := newBinaryWriter()
	encodeForOID(t, w)
	h := hash.Of(w.data())
	t.oid = &h
	return h
}

func encodeForOID(t *Type, w *binaryWriter) {
	switch desc := t.Desc.(type) {
	case PrimitiveDesc:
		w.writeUint8(uint8(desc.Kind()))
	case CycleDesc:
		w.writeUint8(uint8(CycleKind))
		w.writeUint32(desc.Level())
	case CompoundDesc:
		w.writeUint8(uint8(desc.kind))
		if desc.kind == UnionKind {
			xor := hash.Hash{}
			for _, elem := range desc.ElemTypes {
				eoid := oid(elem)
				for i := 0; i < hash.ByteLen; i++ {
					xor[i] ^= eoid[i]
				}
			}
			w.writeHash(xor)
		} else {
			for _, elem := range desc.ElemTypes {
				w.writeHash(oid(elem))
			}
		}
	case StructDesc:
		w.writeUint8(uint8(StructKind))
		w.writeString(desc.Name)
		w.writeUint32(uint32(desc.Len()))
		desc.IterFields(func(name string, ft *Type) {
			w.writeString(name)
			w.writeHash(oid(ft))
		})
	default:
		d.Panic("unknown type desc")
	}
}

// hasCycles reports whether t contains a Cycle back-reference anywhere in
// its definition. Types form a DAG, so the walk terminates.
func hasCycles(t *Type) bool {
	switch desc := t.Desc.(type) {
	case CycleDesc:
		return true
	case CompoundDesc:
		for _, elem := range desc.ElemTypes {
			if hasCycles(elem) {
				return true
			}
		}
	case StructDesc:
		cyclic := false
		desc.IterFields(func(_ string, ft *Type) {
			if !cyclic && hasCycles(ft) {
				cyclic = true
			}
		})
		return cyclic
	}
	return false
}

// checkForUnrolledCycle panics if a proper descendant struct of t is
// structurally equal to t itself; a rolled representation of a cyclic type
// that also appears unrolled is forbidden.
func checkForUnrolledCycle(t *Type) {
	toid := oid(t)
	var walk func(t2 *Type)
	walk = func(t2 *Type) {
		switch desc := t2.Desc.(type) {
		case CompoundDesc:
			for _, elem := range desc.ElemTypes {
				walk(elem)
			}
		case StructDesc:
			if t2 != t && oid(t2) == toid {
				d.Panic("unrolled cycle of struct type %s is not supported", desc.Name)
			}
			desc.IterFields(func(_ string, ft *Type) {
				walk(ft)
			})
		}
	}
	walk(t)
}

var fieldNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func verifyStructName(name string) {
	if name != "" {
		verifyName(name, "struct")
	}
}

func verifyFieldNames(names []string) {
	if len(names) == 0 {
		return
	}
	last := names[0]
	verifyName(last, "field")
	for _, name := range names[1:] {
		verifyName(name, "field")
		d.PanicIfFalse(last < name, "Field names must be unique and ordered alphabetically")
		last = name
	}
}

func verifyName(name, kind string) {
	d.PanicIfFalse(fieldNameRe.MatchString(name), `Invalid %s name: "%s"`, kind, name)
}

// MakeListType returns the List<elemType> type.
func MakeListType(elemType *Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.getCompoundType(ListKind, elemType)
}

// MakeSetType returns the Set<elemType> type.
func MakeSetType(elemType *Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.getCompoundType(SetKind, elemType)
}

// MakeRefType returns the Ref<targetType> type.
func MakeRefType(targetType *Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.getCompoundType(RefKind, targetType)
}

// MakeMapType returns the Map<keyType, valType> type.
func MakeMapType(keyType, valType *Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.getCompoundType(MapKind, keyType, valType)
}

// MakeStructType creates a new struct type. Field names must be unique,
// legal, and sorted ascending; fieldTypes correspond positionally.
func MakeStructType(name string, fieldNames []string, fieldTypes []*Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.makeStructType(name, fieldNames, fieldTypes)
}

// MakeUnionType creates a new union type unless the elemTypes can be
// folded into a single non-union type. Members are deduplicated and sorted
// into their canonical (oid) order; Union of a single T is T itself.
func MakeUnionType(elemTypes ...*Type) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.makeUnionType(elemTypes...)
}

// MakeCycleType returns a type which is a back-reference to the level-th
// enclosing struct in a type definition.
func MakeCycleType(level uint32) *Type {
	staticTypeCache.Lock()
	defer staticTypeCache.Unlock()
	return staticTypeCache.getCycleType(level)
}
