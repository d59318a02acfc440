// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// A Path locates a value in Silt relative to some other value. For
// example, in a spec like `http://demo.example/foo::bar.baz`, the path is
// `.baz`. Paths are resolved against the graph of inlined values; they do
// not traverse refs implicitly.
type Path []PathPart

type PathPart interface {
	Resolve(v Value, vr ValueReader) Value
	String() string
}

var fieldPathComponentRe = regexp.MustCompile("^[a-zA-Z][a-zA-Z0-9_]*")
var annotationRe = regexp.MustCompile("^[a-z]+")
var atIndexRe = regexp.MustCompile(`^\((-?\d+)\)`)

// ParsePath parses str into a Path, or returns one of the enumerated
// syntax errors.
func ParsePath(str string) (Path, error) {
	if str == "" {
		return Path{}, errors.New("Empty path")
	}
	return constructPath(Path{}, str)
}

// MustParsePath parses str and panics on failure.
func MustParsePath(str string) Path {
	p, err := ParsePath(str)
	d.PanicIfError(err)
	return p
}

func constructPath(parts Path, str string) (Path, error) {
	if len(str) == 0 {
		return parts, nil
	}

	op, tail := str[0], str[1:]

	switch op {
	case '.':
		idx := fieldPathComponentRe.FindIndex([]byte(tail))
		if idx == nil {
			return Path{}, fmt.Errorf("Invalid field: %s", tail)
		}
		parts = append(parts, FieldPath{tail[:idx[1]]})
		return constructPath(parts, tail[idx[1]:])

	case '[':
		if len(tail) == 0 {
			return Path{}, errors.New("Path ends in [")
		}
		idx, h, rem, err := ParsePathIndex(tail)
		if err != nil {
			return Path{}, err
		}

		intoKey := false
		if strings.HasPrefix(rem, "@key") {
			intoKey = true
			rem = rem[len("@key"):]
		}

		var part PathPart
		if idx != nil {
			part = IndexPath{idx, intoKey}
		} else {
			part = HashIndexPath{h, intoKey}
		}
		parts = append(parts, part)
		return constructPath(parts, rem)

	case '@':
		idx := annotationRe.FindIndex([]byte(tail))
		if idx == nil {
			return Path{}, fmt.Errorf("Invalid operator: @%s", tail)
		}
		ann, rem := tail[:idx[1]], tail[idx[1]:]

		switch ann {
		case "key":
			if len(parts) == 0 {
				return Path{}, errors.New("Cannot use @key annotation at beginning of path")
			}
			lastPart := parts[len(parts)-1]
			switch p := lastPart.(type) {
			case IndexPath:
				p.IntoKey = true
				parts[len(parts)-1] = p
			case HashIndexPath:
				p.IntoKey = true
				parts[len(parts)-1] = p
			case AtAnnotation:
				p.IntoKey = true
				parts[len(parts)-1] = p
			default:
				return Path{}, fmt.Errorf("Cannot use @key annotation on: %s", lastPart.String())
			}
			return constructPath(parts, rem)
		case "type":
			parts = append(parts, TypeAnnotation{})
			return constructPath(parts, rem)
		case "at":
			m := atIndexRe.FindStringSubmatch(rem)
			if m == nil {
				return Path{}, fmt.Errorf("Unsupported annotation: @%s", ann)
			}
			i, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return Path{}, fmt.Errorf("Invalid index: %s", m[1])
			}
			parts = append(parts, AtAnnotation{i, false})
			return constructPath(parts, rem[len(m[0]):])
		default:
			return Path{}, fmt.Errorf("Unsupported annotation: @%s", ann)
		}

	default:
		return Path{}, fmt.Errorf("Invalid operator: %s", string(op))
	}
}

// ParsePathIndex parses an index (the part between [ and ]) and returns
// either a primitive index value or a hash, plus the remainder of the
// string after the closing ].
func ParsePathIndex(str string) (idx Value, h hash.Hash, rem string, err error) {
	if str[0] == '"' {
		// Quoted string.
		stringBuf := []byte{}
		i := 1
		for ; i < len(str); i++ {
			c := str[i]
			if c == '"' {
				break
			}
			if c == '\\' && i < len(str)-1 {
				i++
				c = str[i]
				if c != '\\' && c != '"' {
					err = errors.New(`Only " and \ can be escaped`)
					return
				}
			}
			stringBuf = append(stringBuf, c)
		}
		if i == len(str) || !strings.HasPrefix(str[i+1:], "]") {
			err = errors.New("[ is missing closing ]")
			return
		}
		idx = String(stringBuf)
		rem = str[i+2:]
		return
	}

	closingIdx := strings.Index(str, "]")
	if closingIdx < 0 {
		err = errors.New("[ is missing closing ]")
		return
	}
	idxStr := str[:closingIdx]
	rem = str[closingIdx+1:]

	if len(idxStr) == 0 {
		err = errors.New("Empty index value")
		return
	}

	if idxStr[0] == '#' {
		hashStr := idxStr[1:]
		var ok bool
		h, ok = hash.MaybeParse(hashStr)
		if !ok {
			err = fmt.Errorf("Invalid hash: %s", hashStr)
			return
		}
		return
	}

	if idxStr == "true" {
		idx = Bool(true)
		return
	}
	if idxStr == "false" {
		idx = Bool(false)
		return
	}
	if f, ferr := strconv.ParseFloat(idxStr, 64); ferr == nil {
		idx = Number(f)
		return
	}

	err = fmt.Errorf("Invalid index: %s", idxStr)
	return
}

// Resolve returns the value at the path relative to v, or nil if the path
// does not exist.
func (p Path) Resolve(v Value, vr ValueReader) Value {
	resolved := v
	for _, part := range p {
		if resolved == nil {
			break
		}
		resolved = part.Resolve(resolved, vr)
	}
	return resolved
}

func (p Path) IsEmpty() bool {
	return len(p) == 0
}

func (p Path) String() string {
	strs := make([]string, 0, len(p))
	for _, part := range p {
		strs = append(strs, part.String())
	}
	return strings.Join(strs, "")
}

// FieldPath references a Struct field by name, or the type of a field when
// resolved against a struct type.
type FieldPath struct {
	Name string
}

func (fp FieldPath) Resolve(v Value, vr ValueReader) Value {
	switch v := v.(type) {
	case Struct:
		if fv, ok := v.MaybeGet(fp.Name); ok {
			return fv
		}
	case *Type:
		if desc, ok := v.Desc.(StructDesc); ok {
			if ft, i := desc.findField(fp.Name); i >= 0 {
				return ft.t
			}
		}
	}
	return nil
}

func (fp FieldPath) String() string {
	return fmt.Sprintf(".%s", fp.Name)
}

// IndexPath references a list element by position, a map entry by key, or
// a set element by value. With IntoKey, it resolves to the key itself.
type IndexPath struct {
	Index   Value
	IntoKey bool
}

func (ip IndexPath) Resolve(v Value, vr ValueReader) Value {
	switch v := v.(type) {
	case List:
		n, ok := intIndex(ip.Index, v.Len())
		if !ok {
			return nil
		}
		if ip.IntoKey {
			return Number(n)
		}
		return v.Get(n)
	case Map:
		if ip.IntoKey {
			if v.Has(ip.Index) {
				return ip.Index
			}
			return nil
		}
		return v.Get(ip.Index)
	case Set:
		if v.Has(ip.Index) {
			return ip.Index
		}
		return nil
	case *Type:
		if desc, ok := v.Desc.(CompoundDesc); ok {
			n, ok := intIndex(ip.Index, uint64(len(desc.ElemTypes)))
			if !ok {
				return nil
			}
			return desc.ElemTypes[n]
		}
	}
	return nil
}

// intIndex interprets idx as a signed position into a sequence of length
// len; negative indices count back from the end.
func intIndex(idx Value, length uint64) (uint64, bool) {
	num, ok := idx.(Number)
	if !ok {
		return 0, false
	}
	f := float64(num)
	if f != float64(int64(f)) {
		return 0, false
	}
	i := int64(f)
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || uint64(i) >= length {
		return 0, false
	}
	return uint64(i), true
}

func (ip IndexPath) String() string {
	ann := ""
	if ip.IntoKey {
		ann = "@key"
	}
	switch idx := ip.Index.(type) {
	case String:
		return fmt.Sprintf("[%s]%s", strconv.Quote(string(idx)), ann)
	case Bool:
		return fmt.Sprintf("[%t]%s", bool(idx), ann)
	case Number:
		return fmt.Sprintf("[%s]%s", strconv.FormatFloat(float64(idx), 'g', -1, 64), ann)
	default:
		d.Panic("unsupported index value")
		return ""
	}
}

// HashIndexPath references an element or key of an ordered collection by
// its hash.
type HashIndexPath struct {
	Hash    hash.Hash
	IntoKey bool
}

func (hip HashIndexPath) Resolve(v Value, vr ValueReader) Value {
	var seq orderedSequence
	switch v := v.(type) {
	case Set:
		seq = v.seq.(orderedSequence)
	case Map:
		seq = v.seq.(orderedSequence)
	default:
		return nil
	}

	cur := newCursorAt(seq, orderedKeyFromHash(hip.Hash), false, false)
	if !cur.valid() {
		return nil
	}
	if getCurrentKey(cur).h != hip.Hash {
		return nil
	}

	switch item := cur.current().(type) {
	case mapEntry:
		if hip.IntoKey {
			return item.key
		}
		return item.value
	default:
		return item.(Value)
	}
}

func (hip HashIndexPath) String() string {
	ann := ""
	if hip.IntoKey {
		ann = "@key"
	}
	return fmt.Sprintf("[#%s]%s", hip.Hash.String(), ann)
}

// TypeAnnotation (@type) resolves to the type of the current value.
type TypeAnnotation struct {
}

func (ann TypeAnnotation) Resolve(v Value, vr ValueReader) Value {
	return v.Type()
}

func (ann TypeAnnotation) String() string {
	return "@type"
}

// AtAnnotation (@at(i)) references an ordered collection by position.
type AtAnnotation struct {
	Index   int64
	IntoKey bool
}

func (ann AtAnnotation) Resolve(v Value, vr ValueReader) Value {
	col, ok := v.(Collection)
	if !ok {
		if t, ok := v.(*Type); ok {
			if desc, ok := t.Desc.(CompoundDesc); ok {
				n, ok := signedIndex(ann.Index, uint64(len(desc.ElemTypes)))
				if !ok {
					return nil
				}
				return desc.ElemTypes[n]
			}
		}
		return nil
	}

	n, ok := signedIndex(ann.Index, col.Len())
	if !ok {
		return nil
	}
	cur := newCursorAtIndex(col.sequence(), n)
	if !cur.valid() {
		return nil
	}
	switch item := cur.current().(type) {
	case mapEntry:
		if ann.IntoKey {
			return item.key
		}
		return item.value
	case byte:
		return Number(item)
	default:
		return item.(Value)
	}
}

func signedIndex(i int64, length uint64) (uint64, bool) {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || uint64(i) >= length {
		return 0, false
	}
	return uint64(i), true
}

func (ann AtAnnotation) String() string {
	rv := fmt.Sprintf("@at(%d)", ann.Index)
	if ann.IntoKey {
		rv += "@key"
	}
	return rv
}
