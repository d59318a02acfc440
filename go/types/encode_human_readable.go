// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/silt-db/silt/go/d"
)

// EncodedValue returns a human readable rendering of v, used in error
// messages and the CLI. It is not part of the serialization format.
func EncodedValue(v Value) string {
	var buf bytes.Buffer
	WriteEncodedValue(&buf, v)
	return buf.String()
}

// WriteEncodedValue writes a human readable rendering of v to w.
func WriteEncodedValue(w io.Writer, v Value) {
	he := humanEncoder{w}
	he.writeValue(v)
}

type humanEncoder struct {
	w io.Writer
}

func (he humanEncoder) write(s string) {
	_, err := io.WriteString(he.w, s)
	d.PanicIfError(err)
}

func (he humanEncoder) writeValue(v Value) {
	switch v := v.(type) {
	case Bool:
		he.write(strconv.FormatBool(bool(v)))
	case Number:
		he.write(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case String:
		he.write(strconv.Quote(string(v)))
	case Blob:
		he.write(fmt.Sprintf("Blob(%d B)", v.Len()))
	case *Type:
		he.writeType(v, nil)
	case Ref:
		he.write(fmt.Sprintf("%s#%s", v.TargetType().Describe(), v.TargetHash()))
	case List:
		he.write("[")
		first := true
		v.IterAll(func(item Value, idx uint64) {
			if !first {
				he.write(", ")
			}
			first = false
			he.writeValue(item)
		})
		he.write("]")
	case Set:
		he.write("{")
		first := true
		v.IterAll(func(item Value) {
			if !first {
				he.write(", ")
			}
			first = false
			he.writeValue(item)
		})
		he.write("}")
	case Map:
		he.write("{")
		first := true
		v.IterAll(func(k, item Value) {
			if !first {
				he.write(", ")
			}
			first = false
			he.writeValue(k)
			he.write(": ")
			he.writeValue(item)
		})
		he.write("}")
	case Struct:
		if v.Name() != "" {
			he.write(v.Name())
			he.write(" ")
		}
		he.write("{")
		first := true
		v.IterFields(func(name string, fv Value) {
			if !first {
				he.write(", ")
			}
			first = false
			he.write(name)
			he.write(": ")
			he.writeValue(fv)
		})
		he.write("}")
	default:
		d.Panic("unknown value kind")
	}
}

func (he humanEncoder) writeType(t *Type, parents []*Type) {
	switch desc := t.Desc.(type) {
	case PrimitiveDesc:
		he.write(KindToString[desc.Kind()])
	case CycleDesc:
		he.write(fmt.Sprintf("Cycle<%d>", desc.Level()))
	case CompoundDesc:
		if desc.kind == UnionKind {
			if len(desc.ElemTypes) == 0 {
				he.write("Union<>")
				return
			}
			parts := make([]string, len(desc.ElemTypes))
			for i, et := range desc.ElemTypes {
				var buf bytes.Buffer
				humanEncoder{&buf}.writeType(et, parents)
				parts[i] = buf.String()
			}
			he.write(strings.Join(parts, " | "))
			return
		}
		he.write(KindToString[desc.kind])
		he.write("<")
		for i, et := range desc.ElemTypes {
			if i > 0 {
				he.write(", ")
			}
			he.writeType(et, parents)
		}
		he.write(">")
	case StructDesc:
		he.write("Struct ")
		if desc.Name != "" {
			he.write(desc.Name)
			he.write(" ")
		}
		he.write("{")
		first := true
		parents = append(parents, t)
		desc.IterFields(func(name string, ft *Type) {
			if !first {
				he.write(", ")
			}
			first = false
			he.write(name)
			he.write(": ")
			he.writeType(ft, parents)
		})
		he.write("}")
	default:
		d.Panic("unknown type desc")
	}
}
