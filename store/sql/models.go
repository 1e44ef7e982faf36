package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type consentRecord struct {
	bun.BaseModel `bun:"table:consent_resources,alias:cr"`

	ID             string    `bun:"id,pk"`
	ClientID       string    `bun:"client_id,notnull"`
	UserID         string    `bun:"user_id,notnull"`
	Receipt        string    `bun:"receipt,notnull"`
	ConsentType    string    `bun:"consent_type,notnull"`
	Status         string    `bun:"status,notnull"`
	Frequency      int       `bun:"frequency,notnull"`
	ValidityPeriod int64     `bun:"validity_period,notnull"`
	Recurring      bool      `bun:"recurring,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type authorizationRecord struct {
	bun.BaseModel `bun:"table:consent_authorizations,alias:cau"`

	ID        string    `bun:"id,pk"`
	ConsentID string    `bun:"consent_id,notnull"`
	UserID    string    `bun:"user_id"`
	Status    string    `bun:"status,notnull"`
	AuthType  string    `bun:"auth_type,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type mappingRecord struct {
	bun.BaseModel `bun:"table:consent_mappings,alias:cm"`

	ID              string `bun:"id,pk"`
	AuthorizationID string `bun:"authorization_id,notnull"`
	AccountID       string `bun:"account_id,notnull"`
	Permission      string `bun:"permission"`
	Status          string `bun:"status,notnull"`
}

type attributeRecord struct {
	bun.BaseModel `bun:"table:consent_attributes,alias:cat"`

	ConsentID string `bun:"consent_id,pk"`
	AttKey    string `bun:"att_key,pk"`
	AttValue  string `bun:"att_value"`
}

type statusAuditRecord struct {
	bun.BaseModel `bun:"table:consent_status_audit,alias:csa"`

	ID             string    `bun:"id,pk"`
	ConsentID      string    `bun:"consent_id,notnull"`
	Status         string    `bun:"status,notnull"`
	ActionTime     time.Time `bun:"action_time,nullzero,notnull"`
	Reason         string    `bun:"reason"`
	ActionBy       string    `bun:"action_by"`
	PreviousStatus string    `bun:"previous_status"`
}

type historyRowRecord struct {
	bun.BaseModel `bun:"table:consent_amendment_history,alias:cah"`

	ID          string    `bun:"id,pk"`
	HistoryID   string    `bun:"history_id,notnull"`
	ConsentID   string    `bun:"consent_id,notnull"`
	RecordID    string    `bun:"record_id,notnull"`
	SectionType string    `bun:"section_type,notnull"`
	Data        string    `bun:"data,notnull"`
	Reason      string    `bun:"reason"`
	AmendedAt   time.Time `bun:"amended_at,nullzero,notnull"`
}

type consentFileRecord struct {
	bun.BaseModel `bun:"table:consent_files,alias:cf"`

	ConsentID string    `bun:"consent_id,pk"`
	Content   []byte    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
