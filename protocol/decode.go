package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type xmlValue struct {
	Text    string     `xml:",chardata"`
	String  *string    `xml:"string"`
	Int     *string    `xml:"int"`
	I4      *string    `xml:"i4"`
	Double  *string    `xml:"double"`
	Boolean *string    `xml:"boolean"`
	Struct  *xmlStruct `xml:"struct"`
	Array   *xmlArray  `xml:"array"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Data struct {
		Values []xmlValue `xml:"value"`
	} `xml:"data"`
}

type xmlParam struct {
	Value *xmlValue `xml:"value"`
}

type xmlMethodResponse struct {
	XMLName xml.Name `xml:"methodResponse"`
	Params  *struct {
		Params []xmlParam `xml:"param"`
	} `xml:"params"`
	Fault *struct {
		Value *xmlValue `xml:"value"`
	} `xml:"fault"`
}

// errNoValue is returned for a response with neither a result nor a fault
var errNoValue = errors.New("response carries neither params nor fault")

// errBadFault is returned for a fault that is not a struct of an int code
// followed by a string message
var errBadFault = errors.New("fault is not a {code, message} struct")

func decodeValue(x *xmlValue) (Value, error) {
	switch {
	case x.String != nil:
		return String(*x.String), nil
	case x.Int != nil, x.I4 != nil:
		text := x.Int
		if text == nil {
			text = x.I4
		}
		i, err := strconv.ParseInt(strings.TrimSpace(*text), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad int %q: %w", *text, err)
		}
		return Int(i), nil
	case x.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*x.Double), 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad double %q: %w", *x.Double, err)
		}
		return Double(f), nil
	case x.Boolean != nil:
		return Bool(strings.TrimSpace(*x.Boolean) == "1"), nil
	case x.Struct != nil:
		members := make([]Member, 0, len(x.Struct.Members))
		for i := range x.Struct.Members {
			m := &x.Struct.Members[i]
			v, err := decodeValue(&m.Value)
			if err != nil {
				return Value{}, fmt.Errorf("member %q: %w", m.Name, err)
			}
			members = append(members, Member{Name: strings.TrimSpace(m.Name), Value: v})
		}
		return Struct(members...), nil
	case x.Array != nil:
		items := make([]Value, 0, len(x.Array.Data.Values))
		for i := range x.Array.Data.Values {
			v, err := decodeValue(&x.Array.Data.Values[i])
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, v)
		}
		return Array(items...), nil
	default:
		// untyped <value> is a string
		return String(x.Text), nil
	}
}

// DecodeValue parses a single <value> element
func DecodeValue(data []byte) (Value, error) {
	var x xmlValue
	if err := xml.Unmarshal(data, &x); err != nil {
		return Value{}, err
	}
	return decodeValue(&x)
}

// ParseResponse parses a <methodResponse> document. A fault document yields a
// Response with Fault set; its struct members are read by position, the first
// as the code and the second as the message.
func ParseResponse(body []byte) (*Response, error) {
	var doc xmlMethodResponse
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	if doc.Fault != nil {
		fault, err := decodeFault(doc.Fault.Value)
		if err != nil {
			return nil, err
		}
		return &Response{Fault: fault}, nil
	}

	if doc.Params == nil || len(doc.Params.Params) == 0 || doc.Params.Params[0].Value == nil {
		return nil, errNoValue
	}
	v, err := decodeValue(doc.Params.Params[0].Value)
	if err != nil {
		return nil, err
	}
	return &Response{Result: v}, nil
}

// decodeFault reads a fault struct. Members are taken by position, the
// service does not always name them faultCode and faultString.
func decodeFault(x *xmlValue) (*Fault, error) {
	if x == nil {
		return nil, errBadFault
	}
	v, err := decodeValue(x)
	if err != nil {
		return nil, fmt.Errorf("fault: %w", err)
	}
	if v.Kind() != KindStruct {
		return nil, fmt.Errorf("%w: got %s", errBadFault, v.Kind())
	}
	members := v.Members()
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: %d member(s)", errBadFault, len(members))
	}
	code, ok := members[0].Value.AsInt()
	if !ok {
		return nil, fmt.Errorf("%w: code is %s", errBadFault, members[0].Value.Kind())
	}
	msg, ok := members[1].Value.AsString()
	if !ok {
		return nil, fmt.Errorf("%w: message is %s", errBadFault, members[1].Value.Kind())
	}
	return &Fault{Code: int(code), Message: msg}, nil
}
