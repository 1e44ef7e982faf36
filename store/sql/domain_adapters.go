package sqlstore

import (
	"time"

	"github.com/goliatone/go-consent/core"
)

func newConsentRecord(in core.CreateConsentInput, id string, now time.Time) *consentRecord {
	return &consentRecord{
		ID:             id,
		ClientID:       in.ClientID,
		UserID:         in.UserID,
		Receipt:        in.Receipt,
		ConsentType:    string(in.Type),
		Status:         string(in.Status),
		Frequency:      in.Frequency,
		ValidityPeriod: in.ValidityPeriod,
		Recurring:      in.Recurring,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r *consentRecord) toDomain() core.ConsentResource {
	if r == nil {
		return core.ConsentResource{}
	}
	return core.ConsentResource{
		ID:             r.ID,
		ClientID:       r.ClientID,
		Receipt:        r.Receipt,
		Type:           core.ConsentType(r.ConsentType),
		Status:         core.ConsentStatus(r.Status),
		Frequency:      r.Frequency,
		ValidityPeriod: r.ValidityPeriod,
		Recurring:      r.Recurring,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newAuthorizationRecord(in core.CreateAuthorizationInput, id string, now time.Time) *authorizationRecord {
	return &authorizationRecord{
		ID:        id,
		ConsentID: in.ConsentID,
		UserID:    in.UserID,
		Status:    string(in.Status),
		AuthType:  in.Type,
		UpdatedAt: now,
	}
}

func (r *authorizationRecord) toDomain() core.AuthorizationResource {
	if r == nil {
		return core.AuthorizationResource{}
	}
	return core.AuthorizationResource{
		ID:        r.ID,
		ConsentID: r.ConsentID,
		UserID:    r.UserID,
		Status:    core.AuthorizationStatus(r.Status),
		Type:      r.AuthType,
		UpdatedAt: r.UpdatedAt,
	}
}

func newMappingRecord(in core.CreateMappingInput, id string) *mappingRecord {
	return &mappingRecord{
		ID:              id,
		AuthorizationID: in.AuthorizationID,
		AccountID:       in.AccountID,
		Permission:      in.Permission,
		Status:          string(in.Status),
	}
}

func (r *mappingRecord) toDomain() core.ConsentMapping {
	if r == nil {
		return core.ConsentMapping{}
	}
	return core.ConsentMapping{
		ID:              r.ID,
		AuthorizationID: r.AuthorizationID,
		AccountID:       r.AccountID,
		Permission:      r.Permission,
		Status:          core.MappingStatus(r.Status),
	}
}

func newAuditRecord(in core.StatusAuditRecord) *statusAuditRecord {
	return &statusAuditRecord{
		ID:             in.ID,
		ConsentID:      in.ConsentID,
		Status:         string(in.Status),
		ActionTime:     in.ActionTime,
		Reason:         in.Reason,
		ActionBy:       in.ActionBy,
		PreviousStatus: string(in.PreviousStatus),
	}
}

func (r *statusAuditRecord) toDomain() core.StatusAuditRecord {
	if r == nil {
		return core.StatusAuditRecord{}
	}
	return core.StatusAuditRecord{
		ID:             r.ID,
		ConsentID:      r.ConsentID,
		Status:         core.ConsentStatus(r.Status),
		ActionTime:     r.ActionTime,
		Reason:         r.Reason,
		ActionBy:       r.ActionBy,
		PreviousStatus: core.ConsentStatus(r.PreviousStatus),
	}
}

func newHistoryRowRecord(in core.HistoryRow, id string) *historyRowRecord {
	return &historyRowRecord{
		ID:          id,
		HistoryID:   in.HistoryID,
		ConsentID:   in.ConsentID,
		RecordID:    in.RecordID,
		SectionType: string(in.Section),
		Data:        in.Data,
		Reason:      in.Reason,
		AmendedAt:   in.AmendedAt,
	}
}

func (r *historyRowRecord) toDomain() core.HistoryRow {
	if r == nil {
		return core.HistoryRow{}
	}
	return core.HistoryRow{
		HistoryID: r.HistoryID,
		ConsentID: r.ConsentID,
		RecordID:  r.RecordID,
		Section:   core.HistorySection(r.SectionType),
		Data:      r.Data,
		Reason:    r.Reason,
		AmendedAt: r.AmendedAt,
	}
}

func (r *consentFileRecord) toDomain() core.ConsentFile {
	if r == nil {
		return core.ConsentFile{}
	}
	return core.ConsentFile{
		ConsentID: r.ConsentID,
		Content:   append([]byte(nil), r.Content...),
	}
}
