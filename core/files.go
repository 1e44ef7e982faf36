package core

import (
	"context"
	"fmt"
	"strings"
)

// fileUploadEligible reports whether a consent status accepts a follow-up
// document.
func fileUploadEligible(status ConsentStatus) bool {
	return status == ConsentStatusAwaitingUpload
}

// StoreConsentFile attaches a follow-up document to a consent awaiting one.
func (s *Service) StoreConsentFile(ctx context.Context, file ConsentFile) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": file.ConsentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "store_consent_file", err, fields)
	}()

	if err = s.requireFileStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	file.ConsentID = strings.TrimSpace(file.ConsentID)
	if file.ConsentID == "" || len(file.Content) == 0 {
		err = s.badInput("consent id and file content are required")
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		consent, txErr := s.consentStore.Get(ctx, file.ConsentID)
		if txErr != nil {
			return txErr
		}
		if !fileUploadEligible(consent.Status) {
			return s.badInput("consent %s does not accept a file in status %s", consent.ID, consent.Status)
		}
		return s.fileStore.Store(ctx, file)
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

// GetConsentFile loads the document attached to a consent.
func (s *Service) GetConsentFile(ctx context.Context, consentID string) (file ConsentFile, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_consent_file", err, fields)
	}()

	if err = s.requireFileStore(); err != nil {
		err = s.mapError(err)
		return ConsentFile{}, err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return ConsentFile{}, err
	}

	file, err = s.fileStore.Get(ctx, consentID)
	if err != nil {
		err = s.mapError(err)
		return ConsentFile{}, err
	}
	return file, nil
}

// DeleteConsentFile removes the document attached to a consent.
func (s *Service) DeleteConsentFile(ctx context.Context, consentID string) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "delete_consent_file", err, fields)
	}()

	if err = s.requireFileStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return err
	}

	if err = s.fileStore.Delete(ctx, consentID); err != nil {
		err = s.mapError(err)
	}
	return err
}

func (s *Service) requireFileStore() error {
	if s == nil || s.fileStore == nil {
		return fmt.Errorf("core: file store is required")
	}
	if s.consentStore == nil {
		return fmt.Errorf("core: consent store is required")
	}
	return nil
}
