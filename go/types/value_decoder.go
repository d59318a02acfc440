// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

type valueDecoder struct {
	r  *binaryReader
	vr ValueReader
}

func newValueDecoder(r *binaryReader, vr ValueReader) *valueDecoder {
	return &valueDecoder{r, vr}
}

func (dec *valueDecoder) readType() *Type {
	k := Kind(dec.r.readUint8())
	checkKind(k)
	switch k {
	case ListKind:
		return MakeListType(dec.readType())
	case SetKind:
		return MakeSetType(dec.readType())
	case RefKind:
		return MakeRefType(dec.readType())
	case MapKind:
		kt := dec.readType()
		vt := dec.readType()
		return MakeMapType(kt, vt)
	case UnionKind:
		count := dec.r.readUint32()
		elemTypes := make([]*Type, count)
		for i := uint32(0); i < count; i++ {
			elemTypes[i] = dec.readType()
		}
		// Members arrive in canonical order; MakeUnionType re-canonicalizes,
		// which is a no-op for well-formed input.
		return MakeUnionType(elemTypes...)
	case StructKind:
		name := dec.r.readString()
		count := dec.r.readUint32()
		fieldNames := make([]string, count)
		fieldTypes := make([]*Type, count)
		for i := uint32(0); i < count; i++ {
			fieldNames[i] = dec.r.readString()
			fieldTypes[i] = dec.readType()
		}
		return MakeStructType(name, fieldNames, fieldTypes)
	case CycleKind:
		return MakeCycleType(dec.r.readUint32())
	default:
		return staticTypeCache.getPrimitiveType(k)
	}
}

func (dec *valueDecoder) readValue() Value {
	t := dec.readType()
	switch t.Kind() {
	case BoolKind:
		return Bool(dec.r.readBool())
	case NumberKind:
		return dec.r.readNumber()
	case StringKind:
		return String(dec.r.readString())
	case TypeKind:
		return dec.readType()
	case RefKind:
		return constructRef(t, dec.r.readHash(), dec.r.readUint64())
	case StructKind:
		desc := t.Desc.(StructDesc)
		values := make([]Value, desc.Len())
		for i := 0; i < desc.Len(); i++ {
			values[i] = dec.readValue()
		}
		return structFromTypeAndValues(t, values)
	case BlobKind:
		return newBlob(dec.readSequence(t))
	case ListKind:
		return newList(dec.readSequence(t))
	case SetKind:
		return newSet(dec.readSequence(t))
	case MapKind:
		return newMap(dec.readSequence(t))
	default:
		d.Panic("unexpected kind %s in value position", KindToString[t.Kind()])
		return nil
	}
}

func (dec *valueDecoder) readSequence(t *Type) sequence {
	isMeta := dec.r.readBool()
	if isMeta {
		count := dec.r.readUint32()
		tuples := make([]metaTuple, count)
		for i := uint32(0); i < count; i++ {
			ref := dec.readValue().(Ref)
			key := dec.readOrderedKey()
			numLeaves := dec.r.readUint64()
			tuples[i] = metaTuple{ref: ref, key: key, numLeaves: numLeaves}
		}
		return newMetaSequence(t, tuples, dec.vr)
	}

	count := dec.r.readUint32()
	switch t.Kind() {
	case BlobKind:
		data := make([]byte, count)
		copy(data, dec.r.buff[dec.r.offset:dec.r.offset+count])
		dec.r.offset += count
		return newBlobLeafSequence(dec.vr, data)
	case ListKind:
		values := make([]Value, count)
		for i := uint32(0); i < count; i++ {
			values[i] = dec.readValue()
		}
		return newListLeafSequence(dec.vr, values...)
	case SetKind:
		data := make([]Value, count)
		for i := uint32(0); i < count; i++ {
			data[i] = dec.readValue()
		}
		return newSetLeafSequence(dec.vr, data...)
	case MapKind:
		data := make([]mapEntry, count)
		for i := uint32(0); i < count; i++ {
			k := dec.readValue()
			v := dec.readValue()
			data[i] = mapEntry{k, v}
		}
		return newMapLeafSequence(dec.vr, data...)
	default:
		d.Panic("unexpected kind %s in sequence position", KindToString[t.Kind()])
		return nil
	}
}

func (dec *valueDecoder) readOrderedKey() orderedKey {
	v := dec.readValue()
	if r, ok := v.(Ref); ok {
		// not ordered by value; the ref target is the key's hash
		return orderedKeyFromHash(r.TargetHash())
	}
	return newOrderedKey(v)
}
