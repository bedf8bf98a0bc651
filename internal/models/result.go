package models

import "encoding/json"

// ErrorKind clasifica los fallos de la integración con MyInvois
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "ValidationError"
	ErrorKindAuth       ErrorKind = "AuthError"
	ErrorKindTransport  ErrorKind = "TransportError"
	ErrorKindRemote     ErrorKind = "RemoteError"
)

// SubmissionResult es el único canal por el que el cliente reporta éxito o fallo.
// Si OK es false, ErrorKind y Message siempre están presentes.
type SubmissionResult struct {
	OK          bool            `json:"ok"`
	DocumentID  string          `json:"documentId,omitempty"`
	InternalID  string          `json:"internalId,omitempty"`
	Status      string          `json:"status,omitempty"`
	QRCode      string          `json:"qrCode,omitempty"`
	RawResponse json.RawMessage `json:"rawResponse,omitempty"`
	RemoteBody  string          `json:"remoteBody,omitempty"`

	ErrorKind  ErrorKind `json:"errorKind,omitempty"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
	Problems   []string  `json:"problems,omitempty"`
}

// NewFailure construye un resultado fallido preservando el cuerpo remoto
func NewFailure(kind ErrorKind, message string, httpStatus int, body []byte) *SubmissionResult {
	result := &SubmissionResult{
		OK:         false,
		ErrorKind:  kind,
		Message:    message,
		HTTPStatus: httpStatus,
	}
	result.attachBody(body)
	return result
}

// NewValidationFailure construye un fallo de validación local con la lista de problemas
func NewValidationFailure(problems []string) *SubmissionResult {
	message := "Invalid invoice data"
	if len(problems) > 0 {
		message = problems[0]
	}
	return &SubmissionResult{
		OK:        false,
		ErrorKind: ErrorKindValidation,
		Message:   message,
		Problems:  problems,
	}
}

// attachBody guarda el cuerpo como JSON si es válido, o como texto si no lo es
func (r *SubmissionResult) attachBody(body []byte) {
	if len(body) == 0 {
		return
	}
	if json.Valid(body) {
		r.RawResponse = json.RawMessage(append([]byte(nil), body...))
		return
	}
	r.RemoteBody = string(body)
}

// WithBody adjunta el cuerpo remoto al resultado
func (r *SubmissionResult) WithBody(body []byte) *SubmissionResult {
	r.attachBody(body)
	return r
}
