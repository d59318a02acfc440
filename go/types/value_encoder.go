// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

// Every value encoding begins with its type, so the format is fully
// self-describing. Type serializations are memoized on the interned Type.
func (t *Type) writeTo(w *binaryWriter) {
	if t.serialization == nil {
		w2 := newBinaryWriter()
		encodeType(t, w2)
		t.serialization = append([]byte{}, w2.data()...)
	}
	w.writeRaw(t.serialization)
}

func encodeType(t *Type, w *binaryWriter) {
	k := t.Kind()
	w.writeUint8(uint8(k))
	switch desc := t.Desc.(type) {
	case PrimitiveDesc:
	case CycleDesc:
		w.writeUint32(desc.Level())
	case CompoundDesc:
		if k == UnionKind {
			w.writeUint32(uint32(len(desc.ElemTypes)))
		}
		for _, elemType := range desc.ElemTypes {
			elemType.writeTo(w)
		}
	case StructDesc:
		w.writeString(desc.Name)
		w.writeUint32(uint32(desc.Len()))
		desc.IterFields(func(name string, ft *Type) {
			w.writeString(name)
			ft.writeTo(w)
		})
	default:
		d.Panic("unknown type desc")
	}
}

type valueEncoder struct {
	w  *binaryWriter
	vw ValueWriter
}

func newValueEncoder(w *binaryWriter, vw ValueWriter) *valueEncoder {
	return &valueEncoder{w, vw}
}

func (enc *valueEncoder) writeValue(v Value) {
	switch v := v.(type) {
	case Bool:
		BoolType.writeTo(enc.w)
		enc.w.writeBool(bool(v))
	case Number:
		NumberType.writeTo(enc.w)
		enc.w.writeNumber(v)
	case String:
		StringType.writeTo(enc.w)
		enc.w.writeString(string(v))
	case *Type:
		TypeType.writeTo(enc.w)
		v.writeTo(enc.w)
	case Ref:
		enc.writeRef(v)
	case Struct:
		v.t.writeTo(enc.w)
		for _, fv := range v.values {
			enc.writeValue(fv)
		}
	case Blob:
		enc.writeSequence(v.seq)
	case List:
		enc.writeSequence(v.seq)
	case Set:
		enc.writeSequence(v.seq)
	case Map:
		enc.writeSequence(v.seq)
	default:
		d.Panic("unknown value kind")
	}
}

func (enc *valueEncoder) writeRef(r Ref) {
	r.t.writeTo(enc.w)
	enc.w.writeHash(r.target)
	enc.w.writeUint64(r.height)
}

func (enc *valueEncoder) writeSequence(seq sequence) {
	seq.Type().writeTo(enc.w)

	if ms, ok := seq.(metaSequence); ok {
		enc.w.writeBool(true) // is meta
		enc.w.writeUint32(uint32(len(ms.tuples)))
		for _, mt := range ms.tuples {
			if enc.vw != nil && mt.child != nil {
				// The subtree was built in memory and never written; writing
				// it now keeps children durable before their parents.
				enc.vw.WriteValue(mt.child)
			}
			enc.writeRef(mt.ref)
			enc.writeOrderedKey(mt.key)
			enc.w.writeUint64(mt.numLeaves)
		}
		return
	}

	enc.w.writeBool(false)
	switch seq := seq.(type) {
	case blobLeafSequence:
		enc.w.writeBytes(seq.data)
	case listLeafSequence:
		enc.w.writeUint32(uint32(len(seq.values)))
		for _, v := range seq.values {
			enc.writeValue(v)
		}
	case setLeafSequence:
		enc.w.writeUint32(uint32(len(seq.data)))
		for _, v := range seq.data {
			enc.writeValue(v)
		}
	case mapLeafSequence:
		enc.w.writeUint32(uint32(len(seq.data)))
		for _, entry := range seq.data {
			enc.writeValue(entry.key)
			enc.writeValue(entry.value)
		}
	default:
		d.Panic("unknown sequence kind")
	}
}

// Keys that do not order by value are represented as a Ref<Bool> to the
// key's hash. The ref's height is 0: it is an encoding convenience, not a
// semantic reference.
func (enc *valueEncoder) writeOrderedKey(key orderedKey) {
	if key.isOrderedByValue {
		enc.writeValue(key.v)
		return
	}
	refOfBoolType.writeTo(enc.w)
	enc.w.writeHash(key.h)
	enc.w.writeUint64(0)
}

var refOfBoolType = MakeRefType(BoolType)
