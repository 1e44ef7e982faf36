package sqlstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-consent/core"
)

// Search runs the multi-criteria consent search and assembles the full
// aggregate for every match: authorizations, mappings, and attributes.
func (s *ConsentStore) Search(ctx context.Context, filter core.SearchFilter) ([]core.DetailedConsent, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: consent store is not configured")
	}

	records := []*consentRecord{}
	query := conn(ctx, s.db).NewSelect().
		Model(&records).
		Order("created_at ASC", "id ASC")

	if ids := trimNonEmpty(filter.ConsentIDs); len(ids) > 0 {
		query = query.Where("?TableAlias.id IN (?)", bun.In(ids))
	}
	if clients := trimNonEmpty(filter.ClientIDs); len(clients) > 0 {
		query = query.Where("?TableAlias.client_id IN (?)", bun.In(clients))
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, value := range filter.Types {
			types = append(types, string(value))
		}
		if types = trimNonEmpty(types); len(types) > 0 {
			query = query.Where("?TableAlias.consent_type IN (?)", bun.In(types))
		}
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, value := range filter.Statuses {
			statuses = append(statuses, string(value))
		}
		if statuses = trimNonEmpty(statuses); len(statuses) > 0 {
			query = query.Where("?TableAlias.status IN (?)", bun.In(statuses))
		}
	}
	if users := trimNonEmpty(filter.UserIDs); len(users) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM consent_authorizations AS cau WHERE cau.consent_id = ?TableAlias.id AND cau.user_id IN (?))",
			bun.In(users),
		)
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where("?TableAlias.created_at >= ?", filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where("?TableAlias.created_at <= ?", filter.CreatedTo.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, retrievalError(err, "consent search failed")
	}
	if len(records) == 0 {
		return []core.DetailedConsent{}, nil
	}

	consentIDs := make([]string, 0, len(records))
	details := make([]core.DetailedConsent, 0, len(records))
	indexByConsent := make(map[string]int, len(records))
	for i, record := range records {
		consentIDs = append(consentIDs, record.ID)
		details = append(details, core.DetailedConsent{ConsentResource: record.toDomain()})
		indexByConsent[record.ID] = i
	}

	authorizations := []*authorizationRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&authorizations).
		Where("?TableAlias.consent_id IN (?)", bun.In(consentIDs)).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, retrievalError(err, "consent search authorization lookup failed")
	}
	authorizationIDs := make([]string, 0, len(authorizations))
	consentByAuthorization := make(map[string]string, len(authorizations))
	for _, record := range authorizations {
		if i, ok := indexByConsent[record.ConsentID]; ok {
			details[i].Authorizations = append(details[i].Authorizations, record.toDomain())
			authorizationIDs = append(authorizationIDs, record.ID)
			consentByAuthorization[record.ID] = record.ConsentID
		}
	}

	if len(authorizationIDs) > 0 {
		mappings := []*mappingRecord{}
		if err := conn(ctx, s.db).NewSelect().
			Model(&mappings).
			Where("?TableAlias.authorization_id IN (?)", bun.In(authorizationIDs)).
			Order("id ASC").
			Scan(ctx); err != nil {
			return nil, retrievalError(err, "consent search mapping lookup failed")
		}
		for _, record := range mappings {
			consentID, ok := consentByAuthorization[record.AuthorizationID]
			if !ok {
				continue
			}
			if i, ok := indexByConsent[consentID]; ok {
				details[i].Mappings = append(details[i].Mappings, record.toDomain())
			}
		}
	}

	attributes := []*attributeRecord{}
	if err := conn(ctx, s.db).NewSelect().
		Model(&attributes).
		Where("?TableAlias.consent_id IN (?)", bun.In(consentIDs)).
		Scan(ctx); err != nil {
		return nil, retrievalError(err, "consent search attribute lookup failed")
	}
	for _, record := range attributes {
		if i, ok := indexByConsent[record.ConsentID]; ok {
			if details[i].Attributes == nil {
				details[i].Attributes = map[string]string{}
			}
			details[i].Attributes[record.AttKey] = record.AttValue
		}
	}

	return details, nil
}
