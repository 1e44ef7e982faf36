package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// consentDataSnapshot is the serialized form of the basic consent fields
// inside an amendment history row.
type consentDataSnapshot struct {
	Receipt        string        `json:"receipt"`
	ValidityPeriod int64         `json:"validity_period"`
	Status         ConsentStatus `json:"status"`
	UpdatedAt      int64         `json:"updated_at"`
}

type mappingSnapshot struct {
	ID              string        `json:"id"`
	AuthorizationID string        `json:"authorization_id"`
	AccountID       string        `json:"account_id"`
	Permission      string        `json:"permission"`
	Status          MappingStatus `json:"status"`
}

// StoreConsentAmendmentHistory persists one amendment event as one row per
// changed section. Each row carries the serialized PRIOR value of its
// section; sections the amendment did not touch produce no row.
func (s *Service) StoreConsentAmendmentHistory(ctx context.Context, history ConsentHistory) error {
	if s == nil || s.historyStore == nil {
		return nil
	}
	if strings.TrimSpace(history.HistoryID) == "" {
		history.HistoryID = newID()
	}
	if strings.TrimSpace(history.ConsentID) == "" {
		return s.badInput("consent id is required to store amendment history")
	}
	if len(history.Changed) == 0 {
		return nil
	}
	if history.AmendedAt.IsZero() {
		history.AmendedAt = nowUTC()
	}

	rows := make([]HistoryRow, 0, len(history.Changed))
	for _, section := range []HistorySection{HistorySectionConsentData, HistorySectionAttributes, HistorySectionMappings} {
		data, ok := history.Changed[section]
		if !ok {
			continue
		}
		rows = append(rows, HistoryRow{
			HistoryID: history.HistoryID,
			ConsentID: history.ConsentID,
			RecordID:  history.ConsentID,
			Section:   section,
			Data:      data,
			Reason:    history.Reason,
			AmendedAt: history.AmendedAt,
		})
	}
	return s.historyStore.StoreRows(ctx, rows)
}

// GetConsentAmendmentHistoryData loads every amendment of a consent and
// reconstructs the full prior state per amendment by overlaying the stored
// sections onto the current aggregate.
func (s *Service) GetConsentAmendmentHistoryData(ctx context.Context, consentID string) (histories map[string]ConsentHistory, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_amendment_history", err, fields)
	}()

	if s == nil || s.historyStore == nil {
		err = s.mapError(fmt.Errorf("core: history store is required"))
		return nil, err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return nil, err
	}

	rows, err := s.historyStore.ListByConsent(ctx, consentID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]ConsentHistory{}, nil
	}

	current, err := s.loadDetailedConsent(ctx, consentID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	histories, err = ReconstructAmendmentHistory(current, rows)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return histories, nil
}

// ReconstructAmendmentHistory overlays stored amendment rows onto the
// current consent state. Only sections present in an amendment's rows are
// replaced; everything else reflects the current aggregate. The result maps
// history ID to the reconstructed prior state.
func ReconstructAmendmentHistory(current DetailedConsent, rows []HistoryRow) (map[string]ConsentHistory, error) {
	grouped := map[string][]HistoryRow{}
	order := []string{}
	for _, row := range rows {
		id := strings.TrimSpace(row.HistoryID)
		if id == "" {
			return nil, fmt.Errorf("core: history row for consent %q is missing a history id", row.ConsentID)
		}
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], row)
	}

	histories := make(map[string]ConsentHistory, len(grouped))
	for _, id := range order {
		entry := ConsentHistory{
			HistoryID: id,
			ConsentID: current.ID,
			Detail:    copyDetailedConsent(current),
			Changed:   map[HistorySection]string{},
		}
		group := grouped[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Section < group[j].Section
		})
		for _, row := range group {
			if entry.Reason == "" {
				entry.Reason = row.Reason
			}
			if entry.AmendedAt.IsZero() {
				entry.AmendedAt = row.AmendedAt
			}
			if err := overlayHistorySection(&entry.Detail, row); err != nil {
				return nil, err
			}
			entry.Changed[row.Section] = row.Data
		}
		histories[id] = entry
	}
	return histories, nil
}

func overlayHistorySection(detail *DetailedConsent, row HistoryRow) error {
	switch row.Section {
	case HistorySectionConsentData:
		var snapshot consentDataSnapshot
		if err := json.Unmarshal([]byte(row.Data), &snapshot); err != nil {
			return fmt.Errorf("core: corrupt consent data history row %q: %w", row.HistoryID, err)
		}
		detail.Receipt = snapshot.Receipt
		detail.ValidityPeriod = snapshot.ValidityPeriod
		if strings.TrimSpace(string(snapshot.Status)) != "" {
			detail.Status = snapshot.Status
		}
		if snapshot.UpdatedAt > 0 {
			detail.UpdatedAt = time.Unix(snapshot.UpdatedAt, 0).UTC()
		}
	case HistorySectionAttributes:
		attributes := map[string]string{}
		if strings.TrimSpace(row.Data) != "" {
			if err := json.Unmarshal([]byte(row.Data), &attributes); err != nil {
				return fmt.Errorf("core: corrupt attribute history row %q: %w", row.HistoryID, err)
			}
		}
		detail.Attributes = attributes
	case HistorySectionMappings:
		snapshots := []mappingSnapshot{}
		if strings.TrimSpace(row.Data) != "" {
			if err := json.Unmarshal([]byte(row.Data), &snapshots); err != nil {
				return fmt.Errorf("core: corrupt mapping history row %q: %w", row.HistoryID, err)
			}
		}
		replaced := make([]ConsentMapping, 0, len(snapshots))
		for _, snapshot := range snapshots {
			replaced = append(replaced, ConsentMapping{
				ID:              snapshot.ID,
				AuthorizationID: snapshot.AuthorizationID,
				AccountID:       snapshot.AccountID,
				Permission:      snapshot.Permission,
				Status:          snapshot.Status,
			})
		}
		detail.Mappings = replaced
	default:
		return fmt.Errorf("core: unknown history section %q", row.Section)
	}
	return nil
}

func copyDetailedConsent(detail DetailedConsent) DetailedConsent {
	copied := detail
	copied.Attributes = cloneAttributes(detail.Attributes)
	copied.Authorizations = append([]AuthorizationResource(nil), detail.Authorizations...)
	copied.Mappings = append([]ConsentMapping(nil), detail.Mappings...)
	return copied
}

func serializeConsentData(consent ConsentResource) string {
	data, err := json.Marshal(consentDataSnapshot{
		Receipt:        consent.Receipt,
		ValidityPeriod: consent.ValidityPeriod,
		Status:         consent.Status,
		UpdatedAt:      consent.UpdatedAt.UTC().Unix(),
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}

func serializeAttributes(attributes map[string]string) string {
	data, err := json.Marshal(cloneAttributes(attributes))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func serializeMappings(mappings []ConsentMapping) string {
	snapshots := make([]mappingSnapshot, 0, len(mappings))
	for _, mapping := range mappings {
		snapshots = append(snapshots, mappingSnapshot{
			ID:              mapping.ID,
			AuthorizationID: mapping.AuthorizationID,
			AccountID:       mapping.AccountID,
			Permission:      mapping.Permission,
			Status:          mapping.Status,
		})
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return "[]"
	}
	return string(data)
}
