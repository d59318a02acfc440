// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/d"
)

// IsSubtype determines whether concreteType is a subtype of requiredType.
// For example, `Number` is a subtype of `Number | String`, and a struct
// with more fields is a subtype of one with fewer.
func IsSubtype(requiredType, concreteType *Type) bool {
	checker := subtypeChecker{assumptions: map[typePair]struct{}{}}
	return checker.isSubtype(requiredType, concreteType, nil, nil)
}

// assertSubtype panics with a type mismatch error if v's type is not a
// subtype of t.
func assertSubtype(t *Type, v Value) {
	if !IsSubtype(t, v.Type()) {
		d.Panic("Invalid type. %s is not a subtype of %s", v.Type().Describe(), t.Describe())
	}
}

type typePair struct {
	required, concrete *Type
}

type subtypeChecker struct {
	// Pairs of struct types currently being compared. A pair revisited
	// while still in progress is coinductively assumed to hold, which is
	// what makes cyclic struct types comparable.
	assumptions map[typePair]struct{}
}

func (sc subtypeChecker) isSubtype(requiredType, concreteType *Type, reqParents, concParents []*Type) bool {
	if requiredType == concreteType {
		return true
	}
	if requiredType.Kind() == ValueKind {
		return true
	}

	if requiredType.Kind() == CycleKind {
		level := int(requiredType.Desc.(CycleDesc).Level())
		d.PanicIfFalse(level < len(reqParents), "unresolved cycle level %d", level)
		i := len(reqParents) - 1 - level
		return sc.isSubtype(reqParents[i], concreteType, reqParents[:i], concParents)
	}
	if concreteType.Kind() == CycleKind {
		level := int(concreteType.Desc.(CycleDesc).Level())
		d.PanicIfFalse(level < len(concParents), "unresolved cycle level %d", level)
		i := len(concParents) - 1 - level
		return sc.isSubtype(requiredType, concParents[i], reqParents, concParents[:i])
	}

	if concreteType.Kind() == UnionKind {
		// Every possible concrete member must be subsumed.
		for _, t := range concreteType.Desc.(CompoundDesc).ElemTypes {
			if !sc.isSubtype(requiredType, t, reqParents, concParents) {
				return false
			}
		}
		return true
	}
	if requiredType.Kind() == UnionKind {
		for _, t := range requiredType.Desc.(CompoundDesc).ElemTypes {
			if sc.isSubtype(t, concreteType, reqParents, concParents) {
				return true
			}
		}
		return false
	}

	if requiredType.Kind() != concreteType.Kind() {
		return false
	}

	switch desc := requiredType.Desc.(type) {
	case PrimitiveDesc:
		// Equal primitive types are pointer-equal, handled above.
		return false
	case CompoundDesc:
		concElems := concreteType.Desc.(CompoundDesc).ElemTypes
		for i, e := range desc.ElemTypes {
			if !sc.isSubtype(e, concElems[i], reqParents, concParents) {
				return false
			}
		}
		return true
	case StructDesc:
		concDesc := concreteType.Desc.(StructDesc)
		if desc.Name != "" && desc.Name != concDesc.Name {
			return false
		}

		pair := typePair{requiredType, concreteType}
		if _, ok := sc.assumptions[pair]; ok {
			return true
		}
		sc.assumptions[pair] = struct{}{}
		defer delete(sc.assumptions, pair)

		reqParents = append(reqParents, requiredType)
		concParents = append(concParents, concreteType)
		ok := true
		desc.IterFields(func(name string, reqFieldType *Type) {
			if !ok {
				return
			}
			concFieldType, i := concDesc.findField(name)
			if i < 0 {
				ok = false
				return
			}
			if !sc.isSubtype(reqFieldType, concFieldType.t, reqParents, concParents) {
				ok = false
			}
		})
		return ok
	default:
		d.Panic("unknown type desc")
		return false
	}
}
