package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TxRunner owns the transaction boundary of one core operation. All store
// writes issued from fn run on the same connection; an error from fn rolls
// every one of them back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenRevoker revokes any live access/refresh tokens scoped to a consent.
// The core invokes it strictly after its own transaction has committed, and
// only when the caller opted in.
type TokenRevoker interface {
	RevokeTokens(ctx context.Context, consentID string, clientID string, userID string) error
}

type NopTokenRevoker struct{}

func (NopTokenRevoker) RevokeTokens(context.Context, string, string, string) error { return nil }

// CreateConsentInput carries the consent row to persist. UserID is the
// exclusivity discriminator for the live-consent uniqueness guarantee; user
// identity otherwise lives on authorizations.
type CreateConsentInput struct {
	ClientID       string
	UserID         string
	Receipt        string
	Type           ConsentType
	Status         ConsentStatus
	Frequency      int
	ValidityPeriod int64
	Recurring      bool
}

type CreateAuthorizationInput struct {
	ConsentID string
	UserID    string
	Status    AuthorizationStatus
	Type      string
}

type CreateMappingInput struct {
	AuthorizationID string
	AccountID       string
	Permission      string
	Status          MappingStatus
}

// SearchFilter narrows a consent search; zero-valued members are ignored.
type SearchFilter struct {
	ConsentIDs  []string
	ClientIDs   []string
	Types       []ConsentType
	Statuses    []ConsentStatus
	UserIDs     []string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Offset      int
}

// AuditFilter narrows a status audit search; zero-valued members are ignored.
type AuditFilter struct {
	ConsentIDs []string
	Status     ConsentStatus
	ActionBy   string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type ConsentStore interface {
	Store(ctx context.Context, in CreateConsentInput) (ConsentResource, error)
	Get(ctx context.Context, id string) (ConsentResource, error)
	GetDetailed(ctx context.Context, id string) (DetailedConsent, error)
	UpdateStatus(ctx context.Context, id string, status ConsentStatus, updatedAt time.Time) error
	UpdateReceipt(ctx context.Context, id string, receipt string, updatedAt time.Time) error
	UpdateValidityPeriod(ctx context.Context, id string, validityPeriod int64, updatedAt time.Time) error
	Search(ctx context.Context, filter SearchFilter) ([]DetailedConsent, error)
}

type AuthorizationStore interface {
	Store(ctx context.Context, in CreateAuthorizationInput) (AuthorizationResource, error)
	Get(ctx context.Context, id string) (AuthorizationResource, error)
	ListByConsent(ctx context.Context, consentID string) ([]AuthorizationResource, error)
	Update(ctx context.Context, id string, userID string, status AuthorizationStatus, updatedAt time.Time) error
}

type MappingStore interface {
	Store(ctx context.Context, inputs []CreateMappingInput) ([]ConsentMapping, error)
	ListByAuthorizations(ctx context.Context, authorizationIDs []string) ([]ConsentMapping, error)
	UpdateStatus(ctx context.Context, mappingIDs []string, status MappingStatus) error
}

type AttributeStore interface {
	Store(ctx context.Context, consentID string, attributes map[string]string) error
	Get(ctx context.Context, consentID string) (map[string]string, error)
	GetByKeys(ctx context.Context, consentID string, keys []string) (map[string]string, error)
	Update(ctx context.Context, consentID string, attributes map[string]string) error
	Delete(ctx context.Context, consentID string, keys []string) error
	DeleteAll(ctx context.Context, consentID string) error
	FindConsentIDsByName(ctx context.Context, name string) ([]string, error)
	FindConsentIDsByNameAndValue(ctx context.Context, name string, value string) ([]string, error)
}

type AuditStore interface {
	Store(ctx context.Context, record StatusAuditRecord) (StatusAuditRecord, error)
	Search(ctx context.Context, filter AuditFilter) ([]StatusAuditRecord, error)
}

type HistoryStore interface {
	StoreRows(ctx context.Context, rows []HistoryRow) error
	ListByConsent(ctx context.Context, consentID string) ([]HistoryRow, error)
}

type FileStore interface {
	Store(ctx context.Context, file ConsentFile) error
	Get(ctx context.Context, consentID string) (ConsentFile, error)
	Delete(ctx context.Context, consentID string) error
}

// StoreProvider hands the service its persistence dependencies as one unit.
type StoreProvider interface {
	ConsentStore() ConsentStore
	AuthorizationStore() AuthorizationStore
	MappingStore() MappingStore
	AttributeStore() AttributeStore
	AuditStore() AuditStore
	HistoryStore() HistoryStore
	FileStore() FileStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

// ConsentLifecycleService is the complete operation surface of the core
// service, for callers that want to depend on an interface.
type ConsentLifecycleService interface {
	CreateAuthorizableConsent(ctx context.Context, req CreateConsentRequest) (DetailedConsent, error)
	CreateExclusiveConsent(ctx context.Context, req CreateExclusiveConsentRequest) (DetailedConsent, error)
	GetConsent(ctx context.Context, consentID string, withAttributes bool) (ConsentResource, error)
	GetDetailedConsent(ctx context.Context, consentID string) (DetailedConsent, error)
	BindUserAccountsToConsent(ctx context.Context, req BindUserAccountsRequest) error
	UpdateConsentStatus(ctx context.Context, consentID string, newStatus ConsentStatus, userID string, reason string) error
	RevokeConsent(ctx context.Context, consentID string, revokedStatus ConsentStatus) error
	RevokeConsentWithUser(ctx context.Context, consentID string, revokedStatus ConsentStatus, userID string) error
	RevokeConsentWithReason(ctx context.Context, consentID string, revokedStatus ConsentStatus, userID string, reason string) error
	RevokeConsentWithOptions(ctx context.Context, req RevokeConsentRequest) error
	RevokeExistingApplicableConsents(ctx context.Context, clientID string, userID string, consentType ConsentType, applicableStatus ConsentStatus, revokedStatus ConsentStatus, shouldRevokeTokens bool) error
	ReauthorizeExistingAuthResource(ctx context.Context, req ReauthorizeRequest) error
	ReauthorizeConsentWithNewAuthResource(ctx context.Context, req ReauthorizeWithNewAuthRequest) error
	AmendConsentData(ctx context.Context, req AmendConsentDataRequest) error
	AmendDetailedConsent(ctx context.Context, req AmendDetailedConsentRequest) (DetailedConsent, error)
	StoreConsentAttributes(ctx context.Context, consentID string, attributes map[string]string) error
	GetConsentAttributes(ctx context.Context, consentID string, keys ...string) (map[string]string, error)
	GetConsentIDsByAttributeName(ctx context.Context, name string) ([]string, error)
	GetConsentIDsByAttributeNameAndValue(ctx context.Context, name string, value string) ([]string, error)
	UpdateConsentAttributes(ctx context.Context, consentID string, attributes map[string]string) error
	DeleteConsentAttributes(ctx context.Context, consentID string, keys ...string) error
	SearchConsents(ctx context.Context, filter SearchFilter) ([]DetailedConsent, error)
	SearchConsentStatusAuditRecords(ctx context.Context, filter AuditFilter) ([]StatusAuditRecord, error)
	StoreConsentAmendmentHistory(ctx context.Context, history ConsentHistory) error
	GetConsentAmendmentHistoryData(ctx context.Context, consentID string) (map[string]ConsentHistory, error)
	StoreConsentFile(ctx context.Context, file ConsentFile) error
	GetConsentFile(ctx context.Context, consentID string) (ConsentFile, error)
	DeleteConsentFile(ctx context.Context, consentID string) error
	ExpireOverdueConsents(ctx context.Context, now time.Time) ([]string, error)
}
