package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

type MappingStore struct {
	db *bun.DB
}

func NewMappingStore(db *bun.DB) (*MappingStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &MappingStore{db: db}, nil
}

func (s *MappingStore) Store(ctx context.Context, inputs []core.CreateMappingInput) ([]core.ConsentMapping, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: mapping store is not configured")
	}
	if len(inputs) == 0 {
		return []core.ConsentMapping{}, nil
	}

	records := make([]*mappingRecord, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.AuthorizationID) == "" || strings.TrimSpace(in.AccountID) == "" {
			return nil, fmt.Errorf("sqlstore: mapping authorization id and account id are required")
		}
		status := in.Status
		if strings.TrimSpace(string(status)) == "" {
			status = core.MappingStatusActive
		}
		in.Status = status
		records = append(records, newMappingRecord(in, uuid.NewString()))
	}

	if _, err := conn(ctx, s.db).NewInsert().Model(&records).Exec(ctx); err != nil {
		return nil, insertionError(err, "mapping insert failed")
	}
	out := make([]core.ConsentMapping, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *MappingStore) ListByAuthorizations(ctx context.Context, authorizationIDs []string) ([]core.ConsentMapping, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: mapping store is not configured")
	}
	ids := trimNonEmpty(authorizationIDs)
	if len(ids) == 0 {
		return []core.ConsentMapping{}, nil
	}

	records := []*mappingRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&records).
		Where("?TableAlias.authorization_id IN (?)", bun.In(ids)).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, retrievalError(err, "mapping list failed")
	}
	out := make([]core.ConsentMapping, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *MappingStore) UpdateStatus(ctx context.Context, mappingIDs []string, status core.MappingStatus) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: mapping store is not configured")
	}
	ids := trimNonEmpty(mappingIDs)
	if len(ids) == 0 {
		return nil
	}
	if status != core.MappingStatusActive && status != core.MappingStatusInactive {
		return fmt.Errorf("sqlstore: unknown mapping status %q", status)
	}

	if _, err := conn(ctx, s.db).NewUpdate().
		Model((*mappingRecord)(nil)).
		Set("status = ?", string(status)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return updateError(err, "mapping status update failed")
	}
	return nil
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
