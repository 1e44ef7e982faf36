package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

type AuditStore struct {
	db   *bun.DB
	repo repository.Repository[*statusAuditRecord]
}

func NewAuditStore(db *bun.DB) (*AuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*statusAuditRecord](db, auditHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid audit repository wiring: %w", err)
		}
	}
	return &AuditStore{db: db, repo: repo}, nil
}

func (s *AuditStore) Store(ctx context.Context, record core.StatusAuditRecord) (core.StatusAuditRecord, error) {
	if s == nil || s.repo == nil {
		return core.StatusAuditRecord{}, fmt.Errorf("sqlstore: audit store is not configured")
	}
	record.ConsentID = strings.TrimSpace(record.ConsentID)
	if record.ConsentID == "" || strings.TrimSpace(string(record.Status)) == "" {
		return core.StatusAuditRecord{}, fmt.Errorf("sqlstore: audit consent id and status are required")
	}

	model := newAuditRecord(record)
	var (
		created *statusAuditRecord
		err     error
	)
	if tx, ok := txFromContext(ctx); ok {
		created, err = s.repo.CreateTx(ctx, tx, model)
	} else {
		created, err = s.repo.Create(ctx, model)
	}
	if err != nil {
		return core.StatusAuditRecord{}, insertionError(err, "audit insert failed")
	}
	return created.toDomain(), nil
}

func (s *AuditStore) Search(ctx context.Context, filter core.AuditFilter) ([]core.StatusAuditRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: audit store is not configured")
	}

	selectors := []repository.SelectCriteria{
		repository.OrderBy("action_time DESC"),
	}
	if ids := trimNonEmpty(filter.ConsentIDs); len(ids) > 0 {
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.consent_id IN (?)", bun.In(ids))
		}))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if actionBy := strings.TrimSpace(filter.ActionBy); actionBy != "" {
		selectors = append(selectors, repository.SelectBy("action_by", "=", actionBy))
	}
	if !filter.From.IsZero() {
		selectors = append(selectors, repository.SelectByTimetz("action_time", ">=", filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		selectors = append(selectors, repository.SelectByTimetz("action_time", "<=", filter.To.UTC()))
	}
	if filter.Limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(filter.Limit, filter.Offset))
	}

	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, retrievalError(err, "audit search failed")
	}
	out := make([]core.StatusAuditRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
