package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

type AttributeStore struct {
	db *bun.DB
}

func NewAttributeStore(db *bun.DB) (*AttributeStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &AttributeStore{db: db}, nil
}

func (s *AttributeStore) Store(ctx context.Context, consentID string, attributes map[string]string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: attribute store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" || len(attributes) == 0 {
		return fmt.Errorf("sqlstore: consent id and attributes are required")
	}

	records := make([]*attributeRecord, 0, len(attributes))
	for key, value := range attributes {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("sqlstore: attribute keys must not be empty")
		}
		records = append(records, &attributeRecord{
			ConsentID: consentID,
			AttKey:    key,
			AttValue:  value,
		})
	}

	if _, err := conn(ctx, s.db).NewInsert().
		Model(&records).
		On("CONFLICT (consent_id, att_key) DO UPDATE").
		Set("att_value = EXCLUDED.att_value").
		Exec(ctx); err != nil {
		return insertionError(err, "attribute insert failed")
	}
	return nil
}

func (s *AttributeStore) Get(ctx context.Context, consentID string) (map[string]string, error) {
	return s.getByKeys(ctx, consentID, nil)
}

func (s *AttributeStore) GetByKeys(ctx context.Context, consentID string, keys []string) (map[string]string, error) {
	return s.getByKeys(ctx, consentID, trimNonEmpty(keys))
}

func (s *AttributeStore) getByKeys(ctx context.Context, consentID string, keys []string) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: attribute store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return nil, fmt.Errorf("sqlstore: consent id is required")
	}

	records := []*attributeRecord{}
	query := conn(ctx, s.db).NewSelect().
		Model(&records).
		Where("?TableAlias.consent_id = ?", consentID)
	if len(keys) > 0 {
		query = query.Where("?TableAlias.att_key IN (?)", bun.In(keys))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, retrievalError(err, "attribute lookup failed")
	}

	out := make(map[string]string, len(records))
	for _, record := range records {
		out[record.AttKey] = record.AttValue
	}
	return out, nil
}

func (s *AttributeStore) Update(ctx context.Context, consentID string, attributes map[string]string) error {
	// Same upsert as Store: updates replace values, new keys are inserted.
	return s.Store(ctx, consentID, attributes)
}

func (s *AttributeStore) Delete(ctx context.Context, consentID string, keys []string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: attribute store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	trimmedKeys := trimNonEmpty(keys)
	if consentID == "" || len(trimmedKeys) == 0 {
		return fmt.Errorf("sqlstore: consent id and attribute keys are required")
	}

	if _, err := conn(ctx, s.db).NewDelete().
		Model((*attributeRecord)(nil)).
		Where("consent_id = ?", consentID).
		Where("att_key IN (?)", bun.In(trimmedKeys)).
		Exec(ctx); err != nil {
		return deletionError(err, "attribute delete failed")
	}
	return nil
}

func (s *AttributeStore) DeleteAll(ctx context.Context, consentID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: attribute store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return fmt.Errorf("sqlstore: consent id is required")
	}

	if _, err := conn(ctx, s.db).NewDelete().
		Model((*attributeRecord)(nil)).
		Where("consent_id = ?", consentID).
		Exec(ctx); err != nil {
		return deletionError(err, "attribute delete failed")
	}
	return nil
}

func (s *AttributeStore) FindConsentIDsByName(ctx context.Context, name string) ([]string, error) {
	return s.findConsentIDs(ctx, name, nil)
}

func (s *AttributeStore) FindConsentIDsByNameAndValue(ctx context.Context, name string, value string) ([]string, error) {
	return s.findConsentIDs(ctx, name, &value)
}

func (s *AttributeStore) findConsentIDs(ctx context.Context, name string, value *string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: attribute store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("sqlstore: attribute name is required")
	}

	ids := []string{}
	query := conn(ctx, s.db).NewSelect().
		Model((*attributeRecord)(nil)).
		ColumnExpr("DISTINCT ?TableAlias.consent_id").
		Where("?TableAlias.att_key = ?", name).
		Order("consent_id ASC")
	if value != nil {
		query = query.Where("?TableAlias.att_value = ?", *value)
	}
	if err := query.Scan(ctx, &ids); err != nil {
		return nil, retrievalError(err, "attribute search failed")
	}
	return ids, nil
}
