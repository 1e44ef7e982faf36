package core

import (
	"context"
	"strings"
)

type ReauthorizeRequest struct {
	ConsentID          string
	AuthorizationID    string
	UserID             string
	AccountPermissions map[string][]string
	NewAuthStatus      AuthorizationStatus
	NewConsentStatus   ConsentStatus
}

type ReauthorizeWithNewAuthRequest struct {
	ConsentID          string
	AuthorizationID    string
	UserID             string
	AccountPermissions map[string][]string
	ExistingAuthStatus AuthorizationStatus
	NewAuthStatus      AuthorizationStatus
	NewAuthType        string
	NewConsentStatus   ConsentStatus
}

// ReauthorizeExistingAuthResource reconciles the account permissions of an
// existing authorization: mappings present on both sides stay active, new
// ones are inserted active, and ones no longer requested go inactive.
// Re-running with the same permissions changes nothing.
func (s *Service) ReauthorizeExistingAuthResource(ctx context.Context, req ReauthorizeRequest) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "reauthorize_existing_auth", err, fields)
	}()

	if err = s.validateReauthorizeInput(req.ConsentID, req.AuthorizationID, req.AccountPermissions); err != nil {
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		detail, txErr := s.loadDetailedConsent(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		authorization, txErr := s.authorizationStore.Get(ctx, req.AuthorizationID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()

		if strings.TrimSpace(string(req.NewAuthStatus)) != "" {
			if txErr = authorization.TransitionTo(req.NewAuthStatus, now); txErr != nil {
				return txErr
			}
			userID := strings.TrimSpace(req.UserID)
			if userID == "" {
				userID = authorization.UserID
			}
			if txErr = s.authorizationStore.Update(ctx, authorization.ID, userID, req.NewAuthStatus, now); txErr != nil {
				return txErr
			}
		}

		if txErr = s.reconcileMappings(ctx, req.AuthorizationID, detail.Mappings, req.AccountPermissions); txErr != nil {
			return txErr
		}

		if strings.TrimSpace(string(req.NewConsentStatus)) != "" {
			previous := detail.Status
			if txErr = detail.TransitionTo(req.NewConsentStatus, now); txErr != nil {
				return txErr
			}
			if previous != req.NewConsentStatus {
				if txErr = s.consentStore.UpdateStatus(ctx, detail.ID, req.NewConsentStatus, now); txErr != nil {
					return txErr
				}
			}
			return s.appendAudit(ctx, detail.ID, req.NewConsentStatus, previous, req.UserID, "consent re-authorized")
		}
		return nil
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

// ReauthorizeConsentWithNewAuthResource retires the existing authorization,
// creates a fresh one for the user, and reconciles the account permissions
// under the new authorization.
func (s *Service) ReauthorizeConsentWithNewAuthResource(ctx context.Context, req ReauthorizeWithNewAuthRequest) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "reauthorize_new_auth", err, fields)
	}()

	if err = s.validateReauthorizeInput(req.ConsentID, req.AuthorizationID, req.AccountPermissions); err != nil {
		return err
	}
	if strings.TrimSpace(string(req.ExistingAuthStatus)) == "" ||
		strings.TrimSpace(string(req.NewAuthStatus)) == "" ||
		strings.TrimSpace(req.NewAuthType) == "" {
		err = s.badInput("existing status, new status, and new type are required for re-authorization")
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		detail, txErr := s.loadDetailedConsent(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		existing, txErr := s.authorizationStore.Get(ctx, req.AuthorizationID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()

		if txErr = existing.TransitionTo(req.ExistingAuthStatus, now); txErr != nil {
			return txErr
		}
		if txErr = s.authorizationStore.Update(ctx, existing.ID, existing.UserID, req.ExistingAuthStatus, now); txErr != nil {
			return txErr
		}

		replacement, txErr := s.authorizationStore.Store(ctx, CreateAuthorizationInput{
			ConsentID: detail.ID,
			UserID:    strings.TrimSpace(req.UserID),
			Status:    req.NewAuthStatus,
			Type:      strings.TrimSpace(req.NewAuthType),
		})
		if txErr != nil {
			return txErr
		}

		// Mappings under the retired authorization go inactive before the
		// replacement takes over the requested set.
		if txErr = s.deactivateMappings(ctx, detail.Mappings, existing.ID); txErr != nil {
			return txErr
		}
		if txErr = s.reconcileMappings(ctx, replacement.ID, nil, req.AccountPermissions); txErr != nil {
			return txErr
		}

		if strings.TrimSpace(string(req.NewConsentStatus)) != "" {
			previous := detail.Status
			if txErr = detail.TransitionTo(req.NewConsentStatus, now); txErr != nil {
				return txErr
			}
			if previous != req.NewConsentStatus {
				if txErr = s.consentStore.UpdateStatus(ctx, detail.ID, req.NewConsentStatus, now); txErr != nil {
					return txErr
				}
			}
			return s.appendAudit(ctx, detail.ID, req.NewConsentStatus, previous, req.UserID, "consent re-authorized with new authorization")
		}
		return nil
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

func (s *Service) validateReauthorizeInput(consentID string, authorizationID string, accountPermissions map[string][]string) error {
	if err := s.requireConsentStore(); err != nil {
		return s.mapError(err)
	}
	if strings.TrimSpace(consentID) == "" || strings.TrimSpace(authorizationID) == "" {
		return s.badInput("consent id and authorization id are required for re-authorization")
	}
	if len(accountPermissions) == 0 {
		return s.badInput("at least one account with permissions is required for re-authorization")
	}
	return nil
}

// reconcileMappings diffs the requested (account, permission) pairs against
// the mappings already recorded under the authorization. Pairs present on
// both sides keep their state, with inactive ones reactivated; pairs only in
// the request are inserted active; active pairs missing from the request are
// deactivated.
func (s *Service) reconcileMappings(
	ctx context.Context,
	authorizationID string,
	existing []ConsentMapping,
	accountPermissions map[string][]string,
) error {
	if s.mappingStore == nil {
		return nil
	}

	desired := map[string]CreateMappingInput{}
	for _, input := range accountPermissionInputs(authorizationID, accountPermissions) {
		desired[mappingKey(input.AccountID, input.Permission)] = input
	}

	reactivate := []string{}
	deactivate := []string{}
	for _, mapping := range existing {
		if mapping.AuthorizationID != authorizationID {
			continue
		}
		key := mappingKey(mapping.AccountID, mapping.Permission)
		if _, wanted := desired[key]; wanted {
			delete(desired, key)
			if mapping.Status == MappingStatusInactive {
				reactivate = append(reactivate, mapping.ID)
			}
			continue
		}
		if mapping.Status == MappingStatusActive {
			deactivate = append(deactivate, mapping.ID)
		}
	}

	if len(reactivate) > 0 {
		if err := s.mappingStore.UpdateStatus(ctx, reactivate, MappingStatusActive); err != nil {
			return err
		}
	}
	if len(deactivate) > 0 {
		if err := s.mappingStore.UpdateStatus(ctx, deactivate, MappingStatusInactive); err != nil {
			return err
		}
	}
	if len(desired) > 0 {
		inserts := make([]CreateMappingInput, 0, len(desired))
		for _, input := range desired {
			inserts = append(inserts, input)
		}
		if _, err := s.mappingStore.Store(ctx, inserts); err != nil {
			return err
		}
	}
	return nil
}

func mappingKey(accountID string, permission string) string {
	return strings.TrimSpace(accountID) + "\x00" + strings.TrimSpace(permission)
}
