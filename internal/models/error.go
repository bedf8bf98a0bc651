package models

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// SuccessResponse representa la respuesta exitosa estandarizada
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse crea una nueva respuesta exitosa
func NewSuccessResponse(message string, data interface{}) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(errMsg, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
	}
}

// NewValidationError crea un error de validación con la lista de problemas
func NewValidationError(message string, errors []string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Code:    string(ErrorKindValidation),
		Error:   message,
		Message: "Validation failed",
		Errors:  errors,
	}
}

// NewResultError crea un error a partir de un SubmissionResult fallido
func NewResultError(errMsg string, result *SubmissionResult) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Code:    string(result.ErrorKind),
		Error:   errMsg,
		Message: result.Message,
		Errors:  result.Problems,
	}
	switch {
	case len(result.RawResponse) > 0:
		resp.Details = result.RawResponse
	case result.RemoteBody != "":
		resp.Details = result.RemoteBody
	}
	return resp
}
