package apiresponse

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every successful reply.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
}

// ErrorDetail describes one reason a request failed, usually one invalid field.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Failure is the envelope of every error reply. Data is always null.
type Failure struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []ErrorDetail `json:"errors"`
	Data       interface{}   `json:"data"`
}

func New(status int, message string, data interface{}) *Response {
	return &Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status < http.StatusBadRequest,
	}
}

func NewFailure(status int, message string, errs ...ErrorDetail) *Failure {
	if errs == nil {
		errs = []ErrorDetail{}
	}
	return &Failure{
		StatusCode: status,
		Message:    message,
		Errors:     errs,
	}
}

// Write encodes r with its status code.
func (r *Response) Write(w http.ResponseWriter) {
	writeJSON(w, r.StatusCode, r)
}

// Write encodes f with its status code.
func (f *Failure) Write(w http.ResponseWriter) {
	writeJSON(w, f.StatusCode, f)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
