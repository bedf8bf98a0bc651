package myinvois

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingCredentials clientId o clientSecret no configurados
var ErrMissingCredentials = errors.New("MyInvois credentials missing, check CLIENT_ID and CLIENT_SECRET")

// AuthError fallo al obtener un token del endpoint /connect/token
type AuthError struct {
	Message    string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("myinvois auth: %s: %v", e.Message, e.Err)
	}
	return "myinvois auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError el servicio no respondió: conexión rechazada, DNS, timeout
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("myinvois %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout indica si el fallo fue por vencimiento del plazo
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// remoteErrorMessage extrae un mensaje legible de un cuerpo de error remoto
func remoteErrorMessage(body []byte) string {
	var payload struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Message          string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Error) > 0 {
		var s string
		if err := json.Unmarshal(payload.Error, &s); err == nil {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil {
			return nested.Message
		}
	}
	return ""
}
