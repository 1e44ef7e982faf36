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

type AuthorizationStore struct {
	db   *bun.DB
	repo repository.Repository[*authorizationRecord]
}

func NewAuthorizationStore(db *bun.DB) (*AuthorizationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*authorizationRecord](db, authorizationHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid authorization repository wiring: %w", err)
		}
	}
	return &AuthorizationStore{db: db, repo: repo}, nil
}

func (s *AuthorizationStore) Store(ctx context.Context, in core.CreateAuthorizationInput) (core.AuthorizationResource, error) {
	if s == nil || s.repo == nil {
		return core.AuthorizationResource{}, fmt.Errorf("sqlstore: authorization store is not configured")
	}
	in.ConsentID = strings.TrimSpace(in.ConsentID)
	if in.ConsentID == "" {
		return core.AuthorizationResource{}, fmt.Errorf("sqlstore: consent id is required")
	}
	if strings.TrimSpace(string(in.Status)) == "" || strings.TrimSpace(in.Type) == "" {
		return core.AuthorizationResource{}, fmt.Errorf("sqlstore: authorization status and type are required")
	}

	record := newAuthorizationRecord(in, uuid.NewString(), time.Now().UTC())
	var (
		created *authorizationRecord
		err     error
	)
	if tx, ok := txFromContext(ctx); ok {
		created, err = s.repo.CreateTx(ctx, tx, record)
	} else {
		created, err = s.repo.Create(ctx, record)
	}
	if err != nil {
		return core.AuthorizationResource{}, insertionError(err, "authorization insert failed")
	}
	return created.toDomain(), nil
}

func (s *AuthorizationStore) Get(ctx context.Context, id string) (core.AuthorizationResource, error) {
	if s == nil || s.db == nil {
		return core.AuthorizationResource{}, fmt.Errorf("sqlstore: authorization store is not configured")
	}
	record := &authorizationRecord{}
	err := conn(ctx, s.db).NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.AuthorizationResource{}, fmt.Errorf("%w: id %q", core.ErrAuthorizationNotFound, id)
		}
		return core.AuthorizationResource{}, retrievalError(err, "authorization lookup failed")
	}
	return record.toDomain(), nil
}

func (s *AuthorizationStore) ListByConsent(ctx context.Context, consentID string) ([]core.AuthorizationResource, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: authorization store is not configured")
	}
	records := []*authorizationRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&records).
		Where("?TableAlias.consent_id = ?", strings.TrimSpace(consentID)).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, retrievalError(err, "authorization list failed")
	}
	out := make([]core.AuthorizationResource, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *AuthorizationStore) Update(ctx context.Context, id string, userID string, status core.AuthorizationStatus, updatedAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: authorization store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: authorization id is required")
	}
	if strings.TrimSpace(string(status)) == "" {
		return fmt.Errorf("sqlstore: authorization status is required")
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result, err := conn(ctx, s.db).NewUpdate().
		Model((*authorizationRecord)(nil)).
		Set("user_id = ?", strings.TrimSpace(userID)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", updatedAt).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return updateError(err, "authorization update failed")
	}
	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 0 {
		return fmt.Errorf("%w: id %q", core.ErrAuthorizationNotFound, trimmedID)
	}
	return nil
}
