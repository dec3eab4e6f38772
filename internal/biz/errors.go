package biz

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-kratos/kratos/v2/errors"
)

const (
	ReasonKeyRequired       = "KEY_REQUIRED"
	ReasonOriginURLRequired = "ORIGIN_URL_REQUIRED"
	ReasonLinkIDRequired    = "LINK_ID_REQUIRED"
	ReasonValidationFailed  = "VALIDATION_FAILED"
	ReasonKeyAlreadyExists  = "KEY_ALREADY_EXISTS"
	ReasonLinkNotFound      = "LINK_NOT_FOUND"
	ReasonUnauthorized      = "UNAUTHORIZED"
	ReasonKeyExhausted      = "KEY_GENERATION_EXHAUSTED"
	ReasonInternal          = "INTERNAL"
)

var (
	ErrKeyRequired       = errors.BadRequest(ReasonKeyRequired, "key is required")
	ErrOriginURLRequired = errors.BadRequest(ReasonOriginURLRequired, "url is required")
	ErrLinkIDRequired    = errors.BadRequest(ReasonLinkIDRequired, "id is required")
	ErrKeyTaken          = errors.BadRequest(ReasonKeyAlreadyExists, "key already exist")
	ErrLinkNotFound      = errors.NotFound(ReasonLinkNotFound, "link not found")
	ErrUnauthorized      = errors.Unauthorized(ReasonUnauthorized, "unauthorized")
	ErrKeyExhausted      = errors.InternalServer(ReasonKeyExhausted, "could not generate a unique key")
)

// ErrInternal wraps a store or transaction failure.
func ErrInternal(message string, cause error) *errors.Error {
	return errors.InternalServer(ReasonInternal, message).WithCause(cause)
}

// ValidationError converts ozzo field errors into a 400 whose metadata maps
// each field to its message.
func ValidationError(err error) error {
	fieldErrs, ok := err.(validation.Errors)
	if !ok {
		return errors.BadRequest(ReasonValidationFailed, err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	md := make(map[string]string, len(fieldErrs))
	for _, field := range fields {
		md[field] = fieldErrs[field].Error()
	}
	return errors.BadRequest(ReasonValidationFailed, "validation failed").WithMetadata(md)
}
