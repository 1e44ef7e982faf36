package core

import (
	"context"
	"time"
)

// ExpireOverdueConsents sweeps authorised consents whose validity period has
// elapsed, moving each to Expired with mapping deactivation and an audit
// record. Returns the IDs of the consents it expired.
func (s *Service) ExpireOverdueConsents(ctx context.Context, now time.Time) (expired []string, err error) {
	startedAt := nowUTC()
	fields := map[string]any{}
	defer func() {
		fields["expired_count"] = len(expired)
		s.observeOperation(ctx, startedAt, "expire_overdue_consents", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	if now.IsZero() {
		now = nowUTC()
	}
	limit := s.config.Expiry.BatchSize

	err = s.runInTx(ctx, func(ctx context.Context) error {
		candidates, txErr := s.consentStore.Search(ctx, SearchFilter{
			Statuses: []ConsentStatus{ConsentStatusAuthorised},
			Limit:    limit,
		})
		if txErr != nil {
			return txErr
		}
		for i := range candidates {
			candidate := &candidates[i]
			if !candidate.Expirable(now) {
				continue
			}
			previous := candidate.Status
			if txErr = candidate.TransitionTo(ConsentStatusExpired, now); txErr != nil {
				return txErr
			}
			if txErr = s.consentStore.UpdateStatus(ctx, candidate.ID, ConsentStatusExpired, now); txErr != nil {
				return txErr
			}
			if txErr = s.deactivateMappings(ctx, candidate.Mappings, ""); txErr != nil {
				return txErr
			}
			if txErr = s.appendAudit(ctx, candidate.ID, ConsentStatusExpired, previous, "", "consent validity period elapsed"); txErr != nil {
				return txErr
			}
			expired = append(expired, candidate.ID)
		}
		return nil
	})
	if err != nil {
		expired = nil
		err = s.mapError(err)
		return nil, err
	}
	return expired, nil
}
