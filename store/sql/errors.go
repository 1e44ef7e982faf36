package sqlstore

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-consent/core"
)

// The four wrappers classify every storage failure by the operation kind,
// so callers receive a stable text code regardless of driver or dialect.

func retrievalError(err error, message string) error {
	return storeError(err, message, core.ConsentErrorDataRetrieval)
}

func insertionError(err error, message string) error {
	return storeError(err, message, core.ConsentErrorDataInsertion)
}

func updateError(err error, message string) error {
	return storeError(err, message, core.ConsentErrorDataUpdate)
}

func deletionError(err error, message string) error {
	return storeError(err, message, core.ConsentErrorDataDeletion)
}

func storeError(err error, message string, textCode string) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithTextCode(textCode)
}
