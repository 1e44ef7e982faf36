package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

type FileStore struct {
	db *bun.DB
}

func NewFileStore(db *bun.DB) (*FileStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &FileStore{db: db}, nil
}

func (s *FileStore) Store(ctx context.Context, file core.ConsentFile) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: file store is not configured")
	}
	file.ConsentID = strings.TrimSpace(file.ConsentID)
	if file.ConsentID == "" || len(file.Content) == 0 {
		return fmt.Errorf("sqlstore: consent id and file content are required")
	}

	record := &consentFileRecord{
		ConsentID: file.ConsentID,
		Content:   append([]byte(nil), file.Content...),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := conn(ctx, s.db).NewInsert().
		Model(record).
		On("CONFLICT (consent_id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Exec(ctx); err != nil {
		return insertionError(err, "consent file insert failed")
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, consentID string) (core.ConsentFile, error) {
	if s == nil || s.db == nil {
		return core.ConsentFile{}, fmt.Errorf("sqlstore: file store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return core.ConsentFile{}, fmt.Errorf("sqlstore: consent id is required")
	}

	record := &consentFileRecord{}
	err := conn(ctx, s.db).NewSelect().
		Model(record).
		Where("?TableAlias.consent_id = ?", consentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ConsentFile{}, fmt.Errorf("%w: consent %q", core.ErrConsentFileNotFound, consentID)
		}
		return core.ConsentFile{}, retrievalError(err, "consent file lookup failed")
	}
	return record.toDomain(), nil
}

func (s *FileStore) Delete(ctx context.Context, consentID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: file store is not configured")
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return fmt.Errorf("sqlstore: consent id is required")
	}

	if _, err := conn(ctx, s.db).NewDelete().
		Model((*consentFileRecord)(nil)).
		Where("consent_id = ?", consentID).
		Exec(ctx); err != nil {
		return deletionError(err, "consent file delete failed")
	}
	return nil
}
