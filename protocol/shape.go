package protocol

import (
	"fmt"
)

// Shape describes the structure a method's result must have
type Shape int

const (
	ShapeBoolean Shape = iota
	ShapeInt
	ShapeStruct
	ShapeStringArray
)

func (s Shape) String() string {
	switch s {
	case ShapeBoolean:
		return "boolean"
	case ShapeInt:
		return "int"
	case ShapeStruct:
		return "struct"
	case ShapeStringArray:
		return "array of strings"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

var responseShapes = map[Method]Shape{
	CheckCaptcha:    ShapeBoolean,
	CheckContent:    ShapeStruct,
	GetAudioCaptcha: ShapeStruct,
	GetImageCaptcha: ShapeStruct,
	GetServerList:   ShapeStringArray,
	GetStatistics:   ShapeInt,
	SendFeedback:    ShapeBoolean,
	VerifyKey:       ShapeBoolean,
}

// ResponseShape returns the expected result shape of method
func ResponseShape(method Method) (Shape, bool) {
	s, ok := responseShapes[method]
	return s, ok
}

// ShapeError reports a result that does not match the expected shape
type ShapeError struct {
	Op       string
	Expected Shape
	Got      Kind
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid response in %s: expected %s, got %s", e.Op, e.Expected, e.Got)
}

// ExpectShape checks that v has the shape s. op names the operation in the error.
func ExpectShape(op string, v Value, s Shape) error {
	var ok bool
	switch s {
	case ShapeBoolean:
		ok = v.Kind() == KindBoolean
	case ShapeInt:
		ok = v.Kind() == KindInt
	case ShapeStruct:
		ok = v.Kind() == KindStruct
	case ShapeStringArray:
		ok = v.Kind() == KindArray
		for _, item := range v.Items() {
			if item.Kind() != KindString {
				ok = false
				break
			}
		}
	}
	if !ok {
		return &ShapeError{Op: op, Expected: s, Got: v.Kind()}
	}
	return nil
}

// ExpectBool extracts a boolean result
func ExpectBool(op string, v Value) (bool, error) {
	if err := ExpectShape(op, v, ShapeBoolean); err != nil {
		return false, err
	}
	b, _ := v.AsBool()
	return b, nil
}

// ExpectInt extracts an int result
func ExpectInt(op string, v Value) (int64, error) {
	if err := ExpectShape(op, v, ShapeInt); err != nil {
		return 0, err
	}
	i, _ := v.AsInt()
	return i, nil
}

// ExpectStruct extracts the members of a struct result
func ExpectStruct(op string, v Value) ([]Member, error) {
	if err := ExpectShape(op, v, ShapeStruct); err != nil {
		return nil, err
	}
	return v.Members(), nil
}

// ExpectStringArray extracts an array of strings result
func ExpectStringArray(op string, v Value) ([]string, error) {
	if err := ExpectShape(op, v, ShapeStringArray); err != nil {
		return nil, err
	}
	items := v.Items()
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item.AsString()
	}
	return out, nil
}
