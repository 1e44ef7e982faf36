package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

type HistoryStore struct {
	db *bun.DB
}

func NewHistoryStore(db *bun.DB) (*HistoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) StoreRows(ctx context.Context, rows []core.HistoryRow) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: history store is not configured")
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*historyRowRecord, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.HistoryID) == "" || strings.TrimSpace(row.ConsentID) == "" {
			return fmt.Errorf("sqlstore: history id and consent id are required")
		}
		if strings.TrimSpace(string(row.Section)) == "" {
			return fmt.Errorf("sqlstore: history section is required")
		}
		records = append(records, newHistoryRowRecord(row, uuid.NewString()))
	}

	if _, err := conn(ctx, s.db).NewInsert().Model(&records).Exec(ctx); err != nil {
		return insertionError(err, "history insert failed")
	}
	return nil
}

func (s *HistoryStore) ListByConsent(ctx context.Context, consentID string) ([]core.HistoryRow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: history store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return nil, fmt.Errorf("sqlstore: consent id is required")
	}

	records := []*historyRowRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&records).
		Where("?TableAlias.consent_id = ?", consentID).
		Order("amended_at DESC", "history_id ASC").
		Scan(ctx); err != nil {
		return nil, retrievalError(err, "history list failed")
	}
	out := make([]core.HistoryRow, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
