// Package consent is the public surface of the consent lifecycle engine.
// It re-exports the core types and constructors so callers can depend on a
// single import path.
package consent

import "github.com/goliatone/go-consent/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type ConsentLifecycleService = core.ConsentLifecycleService
type TxRunner = core.TxRunner
type TokenRevoker = core.TokenRevoker
type MetricsRecorder = core.MetricsRecorder
type ConsentStore = core.ConsentStore
type AuthorizationStore = core.AuthorizationStore
type MappingStore = core.MappingStore
type AttributeStore = core.AttributeStore
type AuditStore = core.AuditStore
type HistoryStore = core.HistoryStore
type FileStore = core.FileStore
type StoreProvider = core.StoreProvider

type ConsentResource = core.ConsentResource
type AuthorizationResource = core.AuthorizationResource
type ConsentMapping = core.ConsentMapping
type DetailedConsent = core.DetailedConsent
type StatusAuditRecord = core.StatusAuditRecord
type ConsentHistory = core.ConsentHistory
type ConsentFile = core.ConsentFile

type ConsentStatus = core.ConsentStatus
type ConsentType = core.ConsentType
type AuthorizationStatus = core.AuthorizationStatus
type MappingStatus = core.MappingStatus

type CreateConsentRequest = core.CreateConsentRequest
type CreateExclusiveConsentRequest = core.CreateExclusiveConsentRequest
type BindUserAccountsRequest = core.BindUserAccountsRequest
type RevokeConsentRequest = core.RevokeConsentRequest
type ReauthorizeRequest = core.ReauthorizeRequest
type ReauthorizeWithNewAuthRequest = core.ReauthorizeWithNewAuthRequest
type AmendConsentDataRequest = core.AmendConsentDataRequest
type AmendDetailedConsentRequest = core.AmendDetailedConsentRequest
type SearchFilter = core.SearchFilter
type AuditFilter = core.AuditFilter

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithTxRunner           = core.WithTxRunner
	WithTokenRevoker       = core.WithTokenRevoker
	WithConsentStore       = core.WithConsentStore
	WithAuthorizationStore = core.WithAuthorizationStore
	WithMappingStore       = core.WithMappingStore
	WithAttributeStore     = core.WithAttributeStore
	WithAuditStore         = core.WithAuditStore
	WithHistoryStore       = core.WithHistoryStore
	WithFileStore          = core.WithFileStore
	WithStoreProvider      = core.WithStoreProvider
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
