package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ConsentErrorBadInput          = "CONSENT_BAD_INPUT"
	ConsentErrorNotFound          = "CONSENT_NOT_FOUND"
	ConsentErrorInvalidTransition = "CONSENT_INVALID_TRANSITION"
	ConsentErrorDataRetrieval     = "CONSENT_DATA_RETRIEVAL_ERROR"
	ConsentErrorDataInsertion     = "CONSENT_DATA_INSERTION_ERROR"
	ConsentErrorDataUpdate        = "CONSENT_DATA_UPDATION_ERROR"
	ConsentErrorDataDeletion      = "CONSENT_DATA_DELETION_ERROR"
	ConsentErrorTokenRevocation   = "CONSENT_TOKEN_REVOCATION_ERROR"
	ConsentErrorInternal          = "CONSENT_INTERNAL_ERROR"
)

func consentErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureConsentErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrConsentNotFound),
		errors.Is(err, ErrAuthorizationNotFound),
		errors.Is(err, ErrConsentFileNotFound):
		return newConsentError(err.Error(), goerrors.CategoryNotFound, ConsentErrorNotFound)
	case errors.Is(err, ErrInvalidConsentStatusTransition),
		errors.Is(err, ErrInvalidAuthorizationStatusTransition),
		errors.Is(err, ErrInvalidMappingStatusTransition):
		return newConsentError(err.Error(), goerrors.CategoryConflict, ConsentErrorInvalidTransition)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "token revocation"):
		return newConsentError(err.Error(), goerrors.CategoryOperation, ConsentErrorTokenRevocation)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newConsentError(err.Error(), goerrors.CategoryBadInput, ConsentErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureConsentErrorEnvelope(mapped)
}

func newConsentError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureConsentErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureConsentErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = consentHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultConsentTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultConsentTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ConsentErrorBadInput
	case goerrors.CategoryNotFound:
		return ConsentErrorNotFound
	case goerrors.CategoryConflict:
		return ConsentErrorInvalidTransition
	case goerrors.CategoryOperation:
		return ConsentErrorDataRetrieval
	default:
		return ConsentErrorInternal
	}
}

func consentHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
