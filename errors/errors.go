// Package errors provides error handling for the Mollom API client
package errors

import (
	stderrors "errors"
	"fmt"
)

// MollomError represents the different types of errors that can occur
type MollomError struct {
	Type    ErrorType
	Message string
	// Method is the RPC method the error relates to, if any
	Method string
	// Code is the service fault code for ServiceFault errors
	Code  int
	Cause error
}

// ErrorType represents the type of error
type ErrorType int

const (
	ConfigError ErrorType = iota
	InvalidMethodError
	InvalidArgumentError
	ConnectError
	SendError
	ReadError
	TimedOutError
	ExhaustedServersError
	MalformedResponseError
	ServiceFaultError
)

var typeNames = map[ErrorType]string{
	ConfigError:            "config",
	InvalidMethodError:     "invalid method",
	InvalidArgumentError:   "invalid argument",
	ConnectError:           "connect",
	SendError:              "send",
	ReadError:              "read",
	TimedOutError:          "timed out",
	ExhaustedServersError:  "servers exhausted",
	MalformedResponseError: "malformed response",
	ServiceFaultError:      "service fault",
}

// String returns a short human readable name of the error type
func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// Error implements the error interface
func (e *MollomError) Error() string {
	var msg string
	switch e.Type {
	case ConfigError:
		msg = fmt.Sprintf("Configuration error: %s", e.Message)
	case InvalidMethodError:
		msg = fmt.Sprintf("Invalid method: %s", e.Message)
	case InvalidArgumentError:
		msg = fmt.Sprintf("Invalid argument: %s", e.Message)
	case ConnectError:
		msg = fmt.Sprintf("Connection failed: %s", e.Message)
	case SendError:
		msg = fmt.Sprintf("Send failed: %s", e.Message)
	case ReadError:
		msg = fmt.Sprintf("Read failed: %s", e.Message)
	case TimedOutError:
		msg = fmt.Sprintf("Request timed out: %s", e.Message)
	case ExhaustedServersError:
		msg = fmt.Sprintf("No more servers available: %s", e.Message)
	case MalformedResponseError:
		msg = fmt.Sprintf("Malformed response: %s", e.Message)
	case ServiceFaultError:
		msg = fmt.Sprintf("[error %d] %s", e.Code, e.Message)
	default:
		msg = fmt.Sprintf("Unknown error: %s", e.Message)
	}
	if e.Method != "" {
		return e.Method + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *MollomError) Unwrap() error {
	return e.Cause
}

// WithMethod returns a copy of the error annotated with the RPC method
func (e *MollomError) WithMethod(method string) *MollomError {
	c := *e
	c.Method = method
	return &c
}

// AsMollomError finds the first MollomError in err's chain
func AsMollomError(err error) (*MollomError, bool) {
	var me *MollomError
	if stderrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsType reports whether err's chain contains a MollomError of the given type
func IsType(err error, t ErrorType) bool {
	me, ok := AsMollomError(err)
	return ok && me.Type == t
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *MollomError {
	return &MollomError{
		Type:    ConfigError,
		Message: message,
	}
}

// NewInvalidMethodError creates an error for a method outside the allow-list
func NewInvalidMethodError(method string, allowed []string) *MollomError {
	return &MollomError{
		Type:    InvalidMethodError,
		Message: fmt.Sprintf("%q is not one of %v", method, allowed),
		Method:  method,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string) *MollomError {
	return &MollomError{
		Type:    InvalidArgumentError,
		Message: message,
	}
}

// NewConnectError creates a new connection error for host
func NewConnectError(host string, cause error) *MollomError {
	return &MollomError{
		Type:    ConnectError,
		Message: fmt.Sprintf("couldn't connect to %s: %v", host, cause),
		Cause:   cause,
	}
}

// NewSendError creates a new send error
func NewSendError(host string, cause error) *MollomError {
	return &MollomError{
		Type:    SendError,
		Message: fmt.Sprintf("couldn't send data to %s: %v", host, cause),
		Cause:   cause,
	}
}

// NewReadError creates a new read error
func NewReadError(host string, cause error) *MollomError {
	return &MollomError{
		Type:    ReadError,
		Message: fmt.Sprintf("couldn't read the response from %s: %v", host, cause),
		Cause:   cause,
	}
}

// NewTimedOutError creates a new timeout error
func NewTimedOutError(host string, cause error) *MollomError {
	return &MollomError{
		Type:    TimedOutError,
		Message: host,
		Cause:   cause,
	}
}

// NewExhaustedServersError creates an error for a call that ran out of servers.
// last is the error of the final attempt, if any.
func NewExhaustedServersError(attempts int, last error) *MollomError {
	return &MollomError{
		Type:    ExhaustedServersError,
		Message: fmt.Sprintf("%d attempt(s) failed, try to increase the timeout", attempts),
		Cause:   last,
	}
}

// NewMalformedResponseError creates a new malformed response error
func NewMalformedResponseError(message string, cause error) *MollomError {
	return &MollomError{
		Type:    MalformedResponseError,
		Message: message,
		Cause:   cause,
	}
}

// NewServiceFaultError creates an error for a fault reported by the service
func NewServiceFaultError(code int, message string) *MollomError {
	return &MollomError{
		Type:    ServiceFaultError,
		Message: message,
		Code:    code,
	}
}
