package service

import (
	"net/http"
	"sort"

	"go-linkstats/pkg/apiresponse"

	"github.com/go-kratos/kratos/v2/errors"
)

const internalErrorMessage = "internal server error"

// writeError maps err to its status and writes the failure envelope. Server
// errors are logged with their cause and errors without a reason get a
// generic message.
func (s *LinkService) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errors.FromError(err)
	status := int(e.Code)
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusInternalServerError
	}

	message := e.Message
	if status >= http.StatusInternalServerError {
		s.log.WithContext(r.Context()).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		if e.Reason == "" {
			message = internalErrorMessage
		}
	}

	apiresponse.NewFailure(status, message, errorDetails(e)...).Write(w)
}

func errorDetails(e *errors.Error) []apiresponse.ErrorDetail {
	if len(e.Metadata) == 0 {
		if e.Reason == "" {
			return nil
		}
		return []apiresponse.ErrorDetail{{Reason: e.Reason, Message: e.Message}}
	}

	fields := make([]string, 0, len(e.Metadata))
	for field := range e.Metadata {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]apiresponse.ErrorDetail, 0, len(fields))
	for _, field := range fields {
		details = append(details, apiresponse.ErrorDetail{
			Field:   field,
			Reason:  e.Reason,
			Message: e.Metadata[field],
		})
	}
	return details
}
