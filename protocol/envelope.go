package protocol

import (
	"bytes"
	"fmt"
)

// Request is a signed method call. The auth fields are time bound and must be
// rebuilt for every attempt.
type Request struct {
	Method    Method
	Params    Value
	PublicKey string
	Time      string
	Nonce     string
	Hash      string
}

// Response is a parsed method response: either a result or a fault
type Response struct {
	Result Value
	Fault  *Fault
}

// Fault is a service level error carried in a well-formed response
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("[error %d] %s", f.Code, f.Message)
}

// Retryable reports whether the fault asks the client to try another server
func (f *Fault) Retryable() bool {
	return f.Code == FaultServerBusy
}

// NewRequest signs params for method with the given credentials and auth time
func NewRequest(method Method, params Value, publicKey, privateKey, authTime, nonce string) *Request {
	return &Request{
		Method:    method,
		Params:    params,
		PublicKey: publicKey,
		Time:      authTime,
		Nonce:     nonce,
		Hash:      Sign(privateKey, authTime, nonce),
	}
}

// Body renders the <methodCall> document. The auth fields are added to the
// parameter struct, overriding caller members of the same name.
func (r *Request) Body() []byte {
	params := r.Params
	if params.Kind() != KindStruct {
		params = Struct()
	}
	params = params.
		With("public_key", String(r.PublicKey)).
		With("time", String(r.Time)).
		With("hash", String(r.Hash)).
		With("nonce", String(r.Nonce))

	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\"?>\n")
	buf.WriteString("<methodCall>\n")
	buf.WriteString("\t<methodName>" + MethodPrefix + string(r.Method) + "</methodName>\n")
	buf.WriteString("\t<params>\n")
	buf.WriteString("\t\t<param>\n")
	params.Encode(&buf)
	buf.WriteString("\n\t\t</param>\n")
	buf.WriteString("\t</params>\n")
	buf.WriteString("</methodCall>\n")
	return buf.Bytes()
}
