package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

type ConsentStore struct {
	db   *bun.DB
	repo repository.Repository[*consentRecord]
}

func NewConsentStore(db *bun.DB) (*ConsentStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*consentRecord](db, consentHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid consent repository wiring: %w", err)
		}
	}
	return &ConsentStore{db: db, repo: repo}, nil
}

func (s *ConsentStore) Store(ctx context.Context, in core.CreateConsentInput) (core.ConsentResource, error) {
	if s == nil || s.repo == nil {
		return core.ConsentResource{}, fmt.Errorf("sqlstore: consent store is not configured")
	}
	in.ClientID = strings.TrimSpace(in.ClientID)
	if in.ClientID == "" || strings.TrimSpace(in.Receipt) == "" {
		return core.ConsentResource{}, fmt.Errorf("sqlstore: client id and receipt are required")
	}
	if strings.TrimSpace(string(in.Type)) == "" || strings.TrimSpace(string(in.Status)) == "" {
		return core.ConsentResource{}, fmt.Errorf("sqlstore: consent type and status are required")
	}

	record := newConsentRecord(in, uuid.NewString(), time.Now().UTC())
	var (
		created *consentRecord
		err     error
	)
	if tx, ok := txFromContext(ctx); ok {
		created, err = s.repo.CreateTx(ctx, tx, record)
	} else {
		created, err = s.repo.Create(ctx, record)
	}
	if err != nil {
		return core.ConsentResource{}, insertionError(err, "consent insert failed")
	}
	return created.toDomain(), nil
}

func (s *ConsentStore) Get(ctx context.Context, id string) (core.ConsentResource, error) {
	if s == nil || s.db == nil {
		return core.ConsentResource{}, fmt.Errorf("sqlstore: consent store is not configured")
	}
	record := &consentRecord{}
	err := conn(ctx, s.db).NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ConsentResource{}, fmt.Errorf("%w: id %q", core.ErrConsentNotFound, id)
		}
		return core.ConsentResource{}, retrievalError(err, "consent lookup failed")
	}
	return record.toDomain(), nil
}

func (s *ConsentStore) GetDetailed(ctx context.Context, id string) (core.DetailedConsent, error) {
	if s == nil || s.db == nil {
		return core.DetailedConsent{}, fmt.Errorf("sqlstore: consent store is not configured")
	}
	consent, err := s.Get(ctx, id)
	if err != nil {
		return core.DetailedConsent{}, err
	}

	detail := core.DetailedConsent{ConsentResource: consent}
	authorizations := []*authorizationRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&authorizations).
		Where("?TableAlias.consent_id = ?", consent.ID).
		Order("id ASC").
		Scan(ctx); err != nil {
		return core.DetailedConsent{}, retrievalError(err, "consent authorization lookup failed")
	}
	authorizationIDs := make([]string, 0, len(authorizations))
	for _, record := range authorizations {
		detail.Authorizations = append(detail.Authorizations, record.toDomain())
		authorizationIDs = append(authorizationIDs, record.ID)
	}

	if len(authorizationIDs) > 0 {
		mappings := []*mappingRecord{}
		if err := conn(ctx, s.db).NewSelect().
			Model(&mappings).
			Where("?TableAlias.authorization_id IN (?)", bun.In(authorizationIDs)).
			Order("id ASC").
			Scan(ctx); err != nil {
			return core.DetailedConsent{}, retrievalError(err, "consent mapping lookup failed")
		}
		for _, record := range mappings {
			detail.Mappings = append(detail.Mappings, record.toDomain())
		}
	}
	return detail, nil
}

func (s *ConsentStore) UpdateStatus(ctx context.Context, id string, status core.ConsentStatus, updatedAt time.Time) error {
	return s.updateColumn(ctx, id, "status", string(status), updatedAt)
}

func (s *ConsentStore) UpdateReceipt(ctx context.Context, id string, receipt string, updatedAt time.Time) error {
	if strings.TrimSpace(receipt) == "" {
		return fmt.Errorf("sqlstore: receipt is required")
	}
	return s.updateColumn(ctx, id, "receipt", receipt, updatedAt)
}

func (s *ConsentStore) UpdateValidityPeriod(ctx context.Context, id string, validityPeriod int64, updatedAt time.Time) error {
	return s.updateColumn(ctx, id, "validity_period", validityPeriod, updatedAt)
}

func (s *ConsentStore) updateColumn(ctx context.Context, id string, column string, value any, updatedAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: consent store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: consent id is required")
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result, err := conn(ctx, s.db).NewUpdate().
		Model((*consentRecord)(nil)).
		Set(column+" = ?", value).
		Set("updated_at = ?", updatedAt).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return updateError(err, "consent update failed")
	}
	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 0 {
		return fmt.Errorf("%w: id %q", core.ErrConsentNotFound, trimmedID)
	}
	return nil
}
