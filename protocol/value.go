package protocol

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDouble
	KindBoolean
	KindStruct
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a wire value: one of string, int, double, boolean, struct or array.
// The zero Value is the empty string.
type Value struct {
	kind    Kind
	str     string
	num     int64
	dbl     float64
	flag    bool
	members []Member
	items   []Value
}

// Member is a named struct member
type Member struct {
	Name  string
	Value Value
}

// String creates a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an int value
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Double creates a double value
func Double(f float64) Value { return Value{kind: KindDouble, dbl: f} }

// Bool creates a boolean value
func Bool(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// Array creates an array value
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value(nil), items...)}
}

// Struct creates a struct value keeping member order. A repeated name keeps
// its first position and its last value.
func Struct(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Name]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Name] = len(out)
		out = append(out, m)
	}
	return Value{kind: KindStruct, members: out}
}

// StructOf creates a struct value from a map, with members sorted by name
func StructOf(m map[string]Value) Value {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	members := make([]Member, len(names))
	for i, name := range names {
		members[i] = Member{Name: name, Value: m[name]}
	}
	return Value{kind: KindStruct, members: members}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string held by v
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt returns the int held by v
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

// AsDouble returns the double held by v
func (v Value) AsDouble() (float64, bool) { return v.dbl, v.kind == KindDouble }

// AsBool returns the boolean held by v
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBoolean }

// Members returns the members of a struct value, nil for other kinds
func (v Value) Members() []Member {
	if v.kind != KindStruct {
		return nil
	}
	return v.members
}

// Member looks up a struct member by name
func (v Value) Member(name string) (Value, bool) {
	for _, m := range v.Members() {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Items returns the elements of an array value, nil for other kinds
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// With returns a copy of the struct v with the member set
func (v Value) With(name string, value Value) Value {
	members := append(append([]Member(nil), v.Members()...), Member{Name: name, Value: value})
	return Struct(members...)
}

// EncodeValue renders v as a <value> element
func EncodeValue(v Value) []byte {
	var buf bytes.Buffer
	v.Encode(&buf)
	return buf.Bytes()
}

// Encode writes v as a <value> element.
// Strings are wrapped in CDATA and member names are written verbatim; neither
// is escaped, so a string containing "]]>" or a name containing markup produces
// a broken document.
func (v Value) Encode(buf *bytes.Buffer) {
	buf.WriteString("<value>")
	switch v.kind {
	case KindString:
		buf.WriteString("<string><![CDATA[")
		buf.WriteString(v.str)
		buf.WriteString("]]></string>")
	case KindInt:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(v.num, 10))
		buf.WriteString("</int>")
	case KindDouble:
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(v.dbl, 'f', -1, 64))
		buf.WriteString("</double>")
	case KindBoolean:
		buf.WriteString("<boolean>")
		if v.flag {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
		buf.WriteString("</boolean>")
	case KindStruct:
		buf.WriteString("\n\t<struct>\n")
		for _, m := range v.members {
			buf.WriteString("<member><name>")
			buf.WriteString(m.Name)
			buf.WriteString("</name>")
			m.Value.Encode(buf)
			buf.WriteString("</member>\n")
		}
		buf.WriteString("\t</struct>\n")
	case KindArray:
		buf.WriteString("<array><data>")
		for _, item := range v.items {
			item.Encode(buf)
		}
		buf.WriteString("</data></array>")
	default:
		panic(fmt.Sprintf("protocol: unknown value kind %d", int(v.kind)))
	}
	buf.WriteString("</value>")
}
