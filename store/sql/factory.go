package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

// RepositoryFactory builds and caches the full set of consent stores over a
// single bun database handle. It also serves as the transaction runner: every
// lifecycle workflow executes inside RunInTx so consent, authorization,
// mapping, attribute, and audit writes commit or roll back together.
type RepositoryFactory struct {
	db        *bun.DB
	txOptions *sql.TxOptions

	consentStore       *ConsentStore
	authorizationStore *AuthorizationStore
	mappingStore       *MappingStore
	attributeStore     *AttributeStore
	auditStore         *AuditStore
	historyStore       *HistoryStore
	fileStore          *FileStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// WithTxOptions sets the isolation options every RunInTx transaction opens
// with. Exclusive-consent creation relies on serializable isolation to close
// the search-then-retire race between concurrent creations for the same
// client and consent type.
func (f *RepositoryFactory) WithTxOptions(options *sql.TxOptions) *RepositoryFactory {
	if f == nil {
		return nil
	}
	f.txOptions = options
	return f
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.consentStore != nil && f.authorizationStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

// RunInTx opens a database transaction and runs fn with the transaction bound
// to the context, so every store call inside fn joins the same transaction.
func (f *RepositoryFactory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f == nil || f.db == nil {
		return fmt.Errorf("sqlstore: repository factory has no database handle")
	}
	if fn == nil {
		return fmt.Errorf("sqlstore: transaction callback is required")
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	return f.db.RunInTx(ctx, f.txOptions, func(ctx context.Context, tx bun.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

func (f *RepositoryFactory) ConsentStore() core.ConsentStore {
	if f == nil {
		return nil
	}
	return f.consentStore
}

func (f *RepositoryFactory) AuthorizationStore() core.AuthorizationStore {
	if f == nil {
		return nil
	}
	return f.authorizationStore
}

func (f *RepositoryFactory) MappingStore() core.MappingStore {
	if f == nil {
		return nil
	}
	return f.mappingStore
}

func (f *RepositoryFactory) AttributeStore() core.AttributeStore {
	if f == nil {
		return nil
	}
	return f.attributeStore
}

func (f *RepositoryFactory) AuditStore() core.AuditStore {
	if f == nil {
		return nil
	}
	return f.auditStore
}

func (f *RepositoryFactory) HistoryStore() core.HistoryStore {
	if f == nil {
		return nil
	}
	return f.historyStore
}

func (f *RepositoryFactory) FileStore() core.FileStore {
	if f == nil {
		return nil
	}
	return f.fileStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	consentStore, err := NewConsentStore(f.db)
	if err != nil {
		return err
	}
	f.consentStore = consentStore
	authorizationStore, err := NewAuthorizationStore(f.db)
	if err != nil {
		return err
	}
	f.authorizationStore = authorizationStore
	mappingStore, err := NewMappingStore(f.db)
	if err != nil {
		return err
	}
	f.mappingStore = mappingStore
	attributeStore, err := NewAttributeStore(f.db)
	if err != nil {
		return err
	}
	f.attributeStore = attributeStore
	auditStore, err := NewAuditStore(f.db)
	if err != nil {
		return err
	}
	f.auditStore = auditStore
	historyStore, err := NewHistoryStore(f.db)
	if err != nil {
		return err
	}
	f.historyStore = historyStore
	fileStore, err := NewFileStore(f.db)
	if err != nil {
		return err
	}
	f.fileStore = fileStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
