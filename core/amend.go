package core

import (
	"context"
	"strings"
	"time"
)

type AmendConsentDataRequest struct {
	ConsentID      string
	Receipt        string
	ValidityPeriod *int64
	UserID         string
}

type AmendDetailedConsentRequest struct {
	ConsentID                string
	UserID                   string
	Receipt                  string
	ValidityPeriod           *int64
	AuthorizationID          string
	AccountPermissions       map[string][]string
	Attributes               map[string]string
	AdditionalAuthorizations []CreateAuthorizationInput
	AdditionalMappings       []CreateMappingInput
	NewConsentStatus         ConsentStatus
	AmendmentReason          string
}

// AmendConsentData updates the consent receipt and/or validity period. At
// least one of the two must be supplied.
func (s *Service) AmendConsentData(ctx context.Context, req AmendConsentDataRequest) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "amend_consent_data", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	req.ConsentID = strings.TrimSpace(req.ConsentID)
	if req.ConsentID == "" {
		err = s.badInput("consent id is required")
		return err
	}
	if strings.TrimSpace(req.Receipt) == "" && req.ValidityPeriod == nil {
		err = s.badInput("a new receipt or validity period is required to amend consent data")
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		consent, txErr := s.consentStore.Get(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()
		if txErr = s.applyConsentDataAmendment(ctx, consent.ID, req.Receipt, req.ValidityPeriod, now); txErr != nil {
			return txErr
		}
		return s.appendAudit(ctx, consent.ID, consent.Status, consent.Status, req.UserID, "consent data amended")
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

// AmendDetailedConsent is the composite amendment: consent data, account
// mappings, and attributes change together, with a snapshot of the prior
// state written to amendment history. One transaction end to end.
func (s *Service) AmendDetailedConsent(ctx context.Context, req AmendDetailedConsentRequest) (detail DetailedConsent, err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "amend_detailed_consent", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	req.ConsentID = strings.TrimSpace(req.ConsentID)
	if req.ConsentID == "" {
		err = s.badInput("consent id is required")
		return DetailedConsent{}, err
	}
	if strings.TrimSpace(req.Receipt) == "" && req.ValidityPeriod == nil && len(req.AccountPermissions) == 0 &&
		req.Attributes == nil && req.NewConsentStatus == "" {
		err = s.badInput("an amendment must change consent data, status, mappings, or attributes")
		return DetailedConsent{}, err
	}
	if len(req.AccountPermissions) > 0 && strings.TrimSpace(req.AuthorizationID) == "" {
		err = s.badInput("authorization id is required to amend account mappings")
		return DetailedConsent{}, err
	}
	for _, extra := range req.AdditionalAuthorizations {
		if strings.TrimSpace(extra.ConsentID) != req.ConsentID {
			err = s.badInput("additional authorizations must reference the amended consent")
			return DetailedConsent{}, err
		}
	}
	for _, extra := range req.AdditionalMappings {
		if strings.TrimSpace(extra.AuthorizationID) == "" || strings.TrimSpace(extra.AccountID) == "" {
			err = s.badInput("additional mappings must carry authorization and account ids")
			return DetailedConsent{}, err
		}
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		prior, txErr := s.loadDetailedConsent(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()

		changed := map[HistorySection]string{}
		if strings.TrimSpace(req.Receipt) != "" || req.ValidityPeriod != nil || req.NewConsentStatus != "" {
			changed[HistorySectionConsentData] = serializeConsentData(prior.ConsentResource)
			if txErr = s.applyConsentDataAmendment(ctx, prior.ID, req.Receipt, req.ValidityPeriod, now); txErr != nil {
				return txErr
			}
		}

		finalStatus := prior.Status
		if req.NewConsentStatus != "" && req.NewConsentStatus != prior.Status {
			next := prior.ConsentResource
			if txErr = next.TransitionTo(req.NewConsentStatus, now); txErr != nil {
				return txErr
			}
			if txErr = s.consentStore.UpdateStatus(ctx, prior.ID, req.NewConsentStatus, now); txErr != nil {
				return txErr
			}
			finalStatus = req.NewConsentStatus
		}

		if len(req.AccountPermissions) > 0 {
			// History keeps the whole prior mapping set; reconstruction
			// replaces the set wholesale, not per authorization.
			changed[HistorySectionMappings] = serializeMappings(prior.Mappings)
			if txErr = s.reconcileMappings(ctx, req.AuthorizationID, prior.Mappings, req.AccountPermissions); txErr != nil {
				return txErr
			}
		}

		if req.Attributes != nil && s.attributeStore != nil {
			changed[HistorySectionAttributes] = serializeAttributes(prior.Attributes)
			if txErr = s.attributeStore.DeleteAll(ctx, prior.ID); txErr != nil {
				return txErr
			}
			if len(req.Attributes) > 0 {
				if txErr = s.attributeStore.Store(ctx, prior.ID, req.Attributes); txErr != nil {
					return txErr
				}
			}
		}

		for _, extra := range req.AdditionalAuthorizations {
			if _, txErr = s.authorizationStore.Store(ctx, extra); txErr != nil {
				return txErr
			}
		}
		if len(req.AdditionalMappings) > 0 && s.mappingStore != nil {
			if _, txErr = s.mappingStore.Store(ctx, req.AdditionalMappings); txErr != nil {
				return txErr
			}
		}

		reason := req.AmendmentReason
		if reason == "" {
			reason = "consent amended"
		}
		if txErr = s.StoreConsentAmendmentHistory(ctx, ConsentHistory{
			HistoryID: newID(),
			ConsentID: prior.ID,
			Reason:    reason,
			AmendedAt: now,
			Changed:   changed,
		}); txErr != nil {
			return txErr
		}
		if txErr = s.appendAudit(ctx, prior.ID, finalStatus, prior.Status, req.UserID, reason); txErr != nil {
			return txErr
		}

		amended, txErr := s.loadDetailedConsent(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		detail = amended
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	return detail, nil
}

func (s *Service) applyConsentDataAmendment(ctx context.Context, consentID string, receipt string, validityPeriod *int64, now time.Time) error {
	if strings.TrimSpace(receipt) != "" {
		if err := s.consentStore.UpdateReceipt(ctx, consentID, receipt, now); err != nil {
			return err
		}
	}
	if validityPeriod != nil {
		if err := s.consentStore.UpdateValidityPeriod(ctx, consentID, *validityPeriod, now); err != nil {
			return err
		}
	}
	return nil
}
