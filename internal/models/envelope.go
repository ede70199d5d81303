package models

// Envelope is the result wrapper every operation returns across the
// transport boundary. Callers must check Success before using Data.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Ok(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func Fail(err error) Envelope {
	return Envelope{Success: false, Error: &ErrorBody{Code: CodeOf(err), Message: err.Error()}}
}
