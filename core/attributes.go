package core

import (
	"context"
	"fmt"
	"strings"
)

// StoreConsentAttributes persists attributes for a consent without touching
// its status or receipt.
func (s *Service) StoreConsentAttributes(ctx context.Context, consentID string, attributes map[string]string) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "store_consent_attributes", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" || len(attributes) == 0 {
		err = s.badInput("consent id and at least one attribute are required")
		return err
	}
	for key := range attributes {
		if strings.TrimSpace(key) == "" {
			err = s.badInput("attribute names must not be empty")
			return err
		}
	}

	if err = s.attributeStore.Store(ctx, consentID, attributes); err != nil {
		err = s.mapError(err)
	}
	return err
}

// GetConsentAttributes loads a consent's attributes, optionally narrowed to
// a key list. An empty key list returns every attribute.
func (s *Service) GetConsentAttributes(ctx context.Context, consentID string, keys ...string) (attributes map[string]string, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_consent_attributes", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return nil, err
	}

	if len(keys) == 0 {
		attributes, err = s.attributeStore.Get(ctx, consentID)
	} else {
		attributes, err = s.attributeStore.GetByKeys(ctx, consentID, keys)
	}
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return attributes, nil
}

// GetConsentIDsByAttributeName finds every consent carrying an attribute
// with the given name.
func (s *Service) GetConsentIDsByAttributeName(ctx context.Context, name string) (ids []string, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"attribute_name": name}
	defer func() {
		s.observeOperation(ctx, startedAt, "find_consents_by_attribute", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		err = s.badInput("attribute name is required")
		return nil, err
	}

	ids, err = s.attributeStore.FindConsentIDsByName(ctx, name)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return ids, nil
}

// GetConsentIDsByAttributeNameAndValue finds every consent carrying an
// attribute with the given name and exact value.
func (s *Service) GetConsentIDsByAttributeNameAndValue(ctx context.Context, name string, value string) (ids []string, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"attribute_name": name}
	defer func() {
		s.observeOperation(ctx, startedAt, "find_consents_by_attribute_value", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		err = s.badInput("attribute name is required")
		return nil, err
	}

	ids, err = s.attributeStore.FindConsentIDsByNameAndValue(ctx, name, value)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return ids, nil
}

// UpdateConsentAttributes replaces the values of the supplied attributes.
func (s *Service) UpdateConsentAttributes(ctx context.Context, consentID string, attributes map[string]string) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_consent_attributes", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" || len(attributes) == 0 {
		err = s.badInput("consent id and at least one attribute are required")
		return err
	}

	if err = s.attributeStore.Update(ctx, consentID, attributes); err != nil {
		err = s.mapError(err)
	}
	return err
}

// DeleteConsentAttributes removes the named attributes. An empty key list
// removes every attribute of the consent.
func (s *Service) DeleteConsentAttributes(ctx context.Context, consentID string, keys ...string) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "delete_consent_attributes", err, fields)
	}()

	if err = s.requireAttributeStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return err
	}

	if len(keys) == 0 {
		err = s.attributeStore.DeleteAll(ctx, consentID)
	} else {
		err = s.attributeStore.Delete(ctx, consentID, keys)
	}
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

func (s *Service) requireAttributeStore() error {
	if s == nil || s.attributeStore == nil {
		return fmt.Errorf("core: attribute store is required")
	}
	return nil
}
