package core

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

type CreateConsentRequest struct {
	Consent             ConsentResource
	UserID              string
	AuthorizationStatus AuthorizationStatus
	AuthorizationType   string
	Implicit            bool
}

type CreateExclusiveConsentRequest struct {
	Consent                  ConsentResource
	UserID                   string
	AuthorizationStatus      AuthorizationStatus
	AuthorizationType        string
	Implicit                 bool
	ApplicableExistingStatus ConsentStatus
	NewExistingConsentStatus ConsentStatus
	ShouldRevokeTokens       bool
}

type RevokeConsentRequest struct {
	ConsentID          string
	RevokedStatus      ConsentStatus
	UserID             string
	Reason             string
	ShouldRevokeTokens bool
}

// CreateAuthorizableConsent persists a new consent, its attributes, and,
// when implicit, the first authorization resource, in one transaction.
func (s *Service) CreateAuthorizableConsent(ctx context.Context, req CreateConsentRequest) (detail DetailedConsent, err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"client_id":    req.Consent.ClientID,
		"consent_type": req.Consent.Type,
	}
	defer func() {
		if detail.ID != "" {
			fields["consent_id"] = detail.ID
		}
		s.observeOperation(ctx, startedAt, "create_consent", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	if err = req.Consent.Validate(); err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	if req.Implicit {
		if strings.TrimSpace(string(req.AuthorizationStatus)) == "" || strings.TrimSpace(req.AuthorizationType) == "" {
			err = s.badInput("authorization status and type are required for implicit consent creation")
			return DetailedConsent{}, err
		}
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		created, txErr := s.createConsentLocked(ctx, req)
		if txErr != nil {
			return txErr
		}
		detail = created
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	return detail, nil
}

// createConsentLocked performs the create inside an already-open transaction.
func (s *Service) createConsentLocked(ctx context.Context, req CreateConsentRequest) (DetailedConsent, error) {
	stored, err := s.consentStore.Store(ctx, CreateConsentInput{
		ClientID:       strings.TrimSpace(req.Consent.ClientID),
		UserID:         strings.TrimSpace(req.UserID),
		Receipt:        req.Consent.Receipt,
		Type:           req.Consent.Type,
		Status:         req.Consent.Status,
		Frequency:      req.Consent.Frequency,
		ValidityPeriod: req.Consent.ValidityPeriod,
		Recurring:      req.Consent.Recurring,
	})
	if err != nil {
		return DetailedConsent{}, err
	}

	if len(req.Consent.Attributes) > 0 && s.attributeStore != nil {
		if err := s.attributeStore.Store(ctx, stored.ID, req.Consent.Attributes); err != nil {
			return DetailedConsent{}, err
		}
		stored.Attributes = cloneAttributes(req.Consent.Attributes)
	}

	detail := DetailedConsent{ConsentResource: stored}
	if req.Implicit && s.authorizationStore != nil {
		authorization, err := s.authorizationStore.Store(ctx, CreateAuthorizationInput{
			ConsentID: stored.ID,
			UserID:    strings.TrimSpace(req.UserID),
			Status:    req.AuthorizationStatus,
			Type:      strings.TrimSpace(req.AuthorizationType),
		})
		if err != nil {
			return DetailedConsent{}, err
		}
		detail.Authorizations = append(detail.Authorizations, authorization)
	}

	if err := s.appendAudit(ctx, stored.ID, stored.Status, "", req.UserID, "consent created"); err != nil {
		return DetailedConsent{}, err
	}
	return detail, nil
}

// CreateExclusiveConsent retires every applicable existing consent for the
// same client, user, and type, then creates the new consent. Retirement and
// creation commit or roll back together.
func (s *Service) CreateExclusiveConsent(ctx context.Context, req CreateExclusiveConsentRequest) (detail DetailedConsent, err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"client_id":    req.Consent.ClientID,
		"user_id":      req.UserID,
		"consent_type": req.Consent.Type,
	}
	defer func() {
		if detail.ID != "" {
			fields["consent_id"] = detail.ID
		}
		s.observeOperation(ctx, startedAt, "create_exclusive_consent", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	if err = req.Consent.Validate(); err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	if strings.TrimSpace(req.UserID) == "" {
		err = s.badInput("user id is required for exclusive consent creation")
		return DetailedConsent{}, err
	}
	if strings.TrimSpace(string(req.ApplicableExistingStatus)) == "" ||
		strings.TrimSpace(string(req.NewExistingConsentStatus)) == "" {
		err = s.badInput("applicable and replacement statuses are required for exclusive consent creation")
		return DetailedConsent{}, err
	}

	var revocables []DetailedConsent
	err = s.runInTx(ctx, func(ctx context.Context) error {
		retired, txErr := s.retireApplicableConsents(
			ctx,
			req.Consent.ClientID,
			req.UserID,
			req.Consent.Type,
			req.ApplicableExistingStatus,
			req.NewExistingConsentStatus,
		)
		if txErr != nil {
			return txErr
		}
		revocables = retired

		created, txErr := s.createConsentLocked(ctx, CreateConsentRequest{
			Consent:             req.Consent,
			UserID:              req.UserID,
			AuthorizationStatus: req.AuthorizationStatus,
			AuthorizationType:   req.AuthorizationType,
			Implicit:            req.Implicit,
		})
		if txErr != nil {
			return txErr
		}
		detail = created
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}

	if req.ShouldRevokeTokens {
		if err = s.revokeTokensFor(ctx, revocables, req.UserID); err != nil {
			return detail, err
		}
	}
	return detail, nil
}

// retireApplicableConsents moves each matching consent to the replacement
// status, deactivates its mappings, and appends an audit record per consent.
func (s *Service) retireApplicableConsents(
	ctx context.Context,
	clientID string,
	userID string,
	consentType ConsentType,
	applicableStatus ConsentStatus,
	newStatus ConsentStatus,
) ([]DetailedConsent, error) {
	matches, err := s.consentStore.Search(ctx, SearchFilter{
		ClientIDs: []string{strings.TrimSpace(clientID)},
		Types:     []ConsentType{consentType},
		Statuses:  []ConsentStatus{applicableStatus},
		UserIDs:   []string{strings.TrimSpace(userID)},
	})
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	for i := range matches {
		existing := &matches[i]
		previous := existing.Status
		if err := existing.TransitionTo(newStatus, now); err != nil {
			return nil, err
		}
		if err := s.consentStore.UpdateStatus(ctx, existing.ID, newStatus, now); err != nil {
			return nil, err
		}
		if err := s.deactivateMappings(ctx, existing.Mappings, ""); err != nil {
			return nil, err
		}
		if err := s.appendAudit(ctx, existing.ID, newStatus, previous, userID, "retired by exclusive consent creation"); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// GetConsent loads one consent, optionally with its attribute map.
func (s *Service) GetConsent(ctx context.Context, consentID string, withAttributes bool) (consent ConsentResource, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_consent", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return ConsentResource{}, err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		err = s.badInput("consent id is required")
		return ConsentResource{}, err
	}

	consent, err = s.consentStore.Get(ctx, consentID)
	if err != nil {
		err = s.mapError(err)
		return ConsentResource{}, err
	}
	if withAttributes && s.attributeStore != nil {
		attributes, attrErr := s.attributeStore.Get(ctx, consentID)
		if attrErr != nil {
			err = s.mapError(attrErr)
			return ConsentResource{}, err
		}
		consent.Attributes = attributes
	}
	return consent, nil
}

// GetDetailedConsent loads the full aggregate: consent, attributes,
// authorizations, and mappings.
func (s *Service) GetDetailedConsent(ctx context.Context, consentID string) (detail DetailedConsent, err error) {
	startedAt := nowUTC()
	fields := map[string]any{"consent_id": consentID}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_detailed_consent", err, fields)
	}()

	detail, err = s.loadDetailedConsent(ctx, consentID)
	if err != nil {
		err = s.mapError(err)
		return DetailedConsent{}, err
	}
	return detail, nil
}

func (s *Service) loadDetailedConsent(ctx context.Context, consentID string) (DetailedConsent, error) {
	if err := s.requireConsentStore(); err != nil {
		return DetailedConsent{}, err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return DetailedConsent{}, s.badInput("consent id is required")
	}

	detail, err := s.consentStore.GetDetailed(ctx, consentID)
	if err != nil {
		return DetailedConsent{}, err
	}
	if s.attributeStore != nil {
		attributes, err := s.attributeStore.Get(ctx, consentID)
		if err != nil {
			return DetailedConsent{}, err
		}
		detail.Attributes = attributes
	}
	return detail, nil
}

type BindUserAccountsRequest struct {
	ConsentID          string
	UserID             string
	AuthorizationID    string
	AccountPermissions map[string][]string
	NewAuthStatus      AuthorizationStatus
	NewConsentStatus   ConsentStatus
}

// BindUserAccountsToConsent attaches the authorizing user and their account
// permissions to a consent, moving authorization and consent forward in one
// transaction.
func (s *Service) BindUserAccountsToConsent(ctx context.Context, req BindUserAccountsRequest) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "bind_user_accounts", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	if strings.TrimSpace(req.ConsentID) == "" ||
		strings.TrimSpace(req.UserID) == "" ||
		strings.TrimSpace(req.AuthorizationID) == "" {
		err = s.badInput("consent id, user id, and authorization id are required")
		return err
	}
	if len(req.AccountPermissions) == 0 {
		err = s.badInput("at least one account with permissions is required")
		return err
	}
	if strings.TrimSpace(string(req.NewAuthStatus)) == "" ||
		strings.TrimSpace(string(req.NewConsentStatus)) == "" {
		err = s.badInput("new authorization and consent statuses are required")
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		consent, txErr := s.consentStore.Get(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		authorization, txErr := s.authorizationStore.Get(ctx, req.AuthorizationID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()

		if txErr = authorization.TransitionTo(req.NewAuthStatus, now); txErr != nil {
			return txErr
		}
		if txErr = s.authorizationStore.Update(ctx, authorization.ID, req.UserID, req.NewAuthStatus, now); txErr != nil {
			return txErr
		}

		inputs := accountPermissionInputs(req.AuthorizationID, req.AccountPermissions)
		if _, txErr = s.mappingStore.Store(ctx, inputs); txErr != nil {
			return txErr
		}

		previous := consent.Status
		if txErr = consent.TransitionTo(req.NewConsentStatus, now); txErr != nil {
			return txErr
		}
		if txErr = s.consentStore.UpdateStatus(ctx, consent.ID, req.NewConsentStatus, now); txErr != nil {
			return txErr
		}
		return s.appendAudit(ctx, consent.ID, req.NewConsentStatus, previous, req.UserID, "user accounts bound")
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

// UpdateConsentStatus performs a status-only transition with an audit record.
func (s *Service) UpdateConsentStatus(ctx context.Context, consentID string, newStatus ConsentStatus, userID string, reason string) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": consentID,
		"user_id":    userID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "update_consent_status", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	consentID = strings.TrimSpace(consentID)
	if consentID == "" || strings.TrimSpace(string(newStatus)) == "" {
		err = s.badInput("consent id and new status are required")
		return err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		consent, txErr := s.consentStore.Get(ctx, consentID)
		if txErr != nil {
			return txErr
		}
		now := nowUTC()
		previous := consent.Status
		if txErr = consent.TransitionTo(newStatus, now); txErr != nil {
			return txErr
		}
		if txErr = s.consentStore.UpdateStatus(ctx, consentID, newStatus, now); txErr != nil {
			return txErr
		}
		return s.appendAudit(ctx, consentID, newStatus, previous, userID, reason)
	})
	if err != nil {
		err = s.mapError(err)
	}
	return err
}

// RevokeConsent revokes a consent without attribution or token revocation.
func (s *Service) RevokeConsent(ctx context.Context, consentID string, revokedStatus ConsentStatus) error {
	return s.RevokeConsentWithOptions(ctx, RevokeConsentRequest{
		ConsentID:     consentID,
		RevokedStatus: revokedStatus,
	})
}

// RevokeConsentWithUser revokes a consent recording the acting user.
func (s *Service) RevokeConsentWithUser(ctx context.Context, consentID string, revokedStatus ConsentStatus, userID string) error {
	return s.RevokeConsentWithOptions(ctx, RevokeConsentRequest{
		ConsentID:     consentID,
		RevokedStatus: revokedStatus,
		UserID:        userID,
	})
}

// RevokeConsentWithReason revokes a consent recording user and reason.
func (s *Service) RevokeConsentWithReason(ctx context.Context, consentID string, revokedStatus ConsentStatus, userID string, reason string) error {
	return s.RevokeConsentWithOptions(ctx, RevokeConsentRequest{
		ConsentID:     consentID,
		RevokedStatus: revokedStatus,
		UserID:        userID,
		Reason:        reason,
	})
}

// RevokeConsentWithOptions is the full revoke: status transition, mapping
// deactivation, audit, and optional token revocation after the local commit.
func (s *Service) RevokeConsentWithOptions(ctx context.Context, req RevokeConsentRequest) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"consent_id": req.ConsentID,
		"user_id":    req.UserID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "revoke_consent", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	req.ConsentID = strings.TrimSpace(req.ConsentID)
	if req.ConsentID == "" || strings.TrimSpace(string(req.RevokedStatus)) == "" {
		err = s.badInput("consent id and revoked status are required")
		return err
	}

	var revoked DetailedConsent
	err = s.runInTx(ctx, func(ctx context.Context) error {
		detail, txErr := s.loadDetailedConsent(ctx, req.ConsentID)
		if txErr != nil {
			return txErr
		}
		if txErr = s.revokeConsentLocked(ctx, &detail, req.RevokedStatus, req.UserID, req.Reason); txErr != nil {
			return txErr
		}
		revoked = detail
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if req.ShouldRevokeTokens {
		return s.revokeTokensFor(ctx, []DetailedConsent{revoked}, req.UserID)
	}
	return nil
}

// revokeConsentLocked applies the revoke inside an open transaction. A
// same-status revoke is a confirming no-op that still leaves an audit record.
func (s *Service) revokeConsentLocked(ctx context.Context, detail *DetailedConsent, revokedStatus ConsentStatus, userID string, reason string) error {
	now := nowUTC()
	previous := detail.Status
	if err := detail.TransitionTo(revokedStatus, now); err != nil {
		return err
	}
	if previous != revokedStatus {
		if err := s.consentStore.UpdateStatus(ctx, detail.ID, revokedStatus, now); err != nil {
			return err
		}
	}
	if err := s.deactivateMappings(ctx, detail.Mappings, ""); err != nil {
		return err
	}
	if reason == "" {
		reason = "consent revoked"
	}
	return s.appendAudit(ctx, detail.ID, revokedStatus, previous, userID, reason)
}

// RevokeExistingApplicableConsents batch-revokes every consent of a client,
// user, and type in the applicable status, in one transaction.
func (s *Service) RevokeExistingApplicableConsents(
	ctx context.Context,
	clientID string,
	userID string,
	consentType ConsentType,
	applicableStatus ConsentStatus,
	revokedStatus ConsentStatus,
	shouldRevokeTokens bool,
) (err error) {
	startedAt := nowUTC()
	fields := map[string]any{
		"client_id":    clientID,
		"user_id":      userID,
		"consent_type": consentType,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "revoke_applicable_consents", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return err
	}
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(string(consentType)) == "" ||
		strings.TrimSpace(string(applicableStatus)) == "" || strings.TrimSpace(string(revokedStatus)) == "" {
		err = s.badInput("client id, consent type, applicable status, and revoked status are required")
		return err
	}

	var revoked []DetailedConsent
	err = s.runInTx(ctx, func(ctx context.Context) error {
		retired, txErr := s.retireApplicableConsents(ctx, clientID, userID, consentType, applicableStatus, revokedStatus)
		if txErr != nil {
			return txErr
		}
		revoked = retired
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if shouldRevokeTokens {
		return s.revokeTokensFor(ctx, revoked, userID)
	}
	return nil
}

// SearchConsents runs the multi-criteria consent search.
func (s *Service) SearchConsents(ctx context.Context, filter SearchFilter) (results []DetailedConsent, err error) {
	startedAt := nowUTC()
	fields := map[string]any{}
	defer func() {
		fields["result_count"] = len(results)
		s.observeOperation(ctx, startedAt, "search_consents", err, fields)
	}()

	if err = s.requireConsentStore(); err != nil {
		err = s.mapError(err)
		return nil, err
	}
	results, err = s.consentStore.Search(ctx, filter)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return results, nil
}

// SearchConsentStatusAuditRecords queries the append-only audit trail.
func (s *Service) SearchConsentStatusAuditRecords(ctx context.Context, filter AuditFilter) (records []StatusAuditRecord, err error) {
	startedAt := nowUTC()
	fields := map[string]any{}
	defer func() {
		fields["result_count"] = len(records)
		s.observeOperation(ctx, startedAt, "search_status_audit", err, fields)
	}()

	if s == nil || s.auditStore == nil {
		err = s.mapError(fmt.Errorf("core: audit store is required"))
		return nil, err
	}
	records, err = s.auditStore.Search(ctx, filter)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return records, nil
}

func (s *Service) appendAudit(ctx context.Context, consentID string, status ConsentStatus, previous ConsentStatus, userID string, reason string) error {
	if s == nil || s.auditStore == nil {
		return nil
	}
	_, err := s.auditStore.Store(ctx, StatusAuditRecord{
		ID:             newID(),
		ConsentID:      consentID,
		Status:         status,
		ActionTime:     nowUTC(),
		Reason:         reason,
		ActionBy:       strings.TrimSpace(userID),
		PreviousStatus: previous,
	})
	return err
}

func (s *Service) deactivateMappings(ctx context.Context, mappings []ConsentMapping, authorizationID string) error {
	if s == nil || s.mappingStore == nil {
		return nil
	}
	authorizationID = strings.TrimSpace(authorizationID)
	ids := make([]string, 0, len(mappings))
	for _, mapping := range mappings {
		if mapping.Status != MappingStatusActive {
			continue
		}
		if authorizationID != "" && mapping.AuthorizationID != authorizationID {
			continue
		}
		ids = append(ids, mapping.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.mappingStore.UpdateStatus(ctx, ids, MappingStatusInactive)
}

// revokeTokensFor invokes the external revoker once per consent. Failures
// surface as token revocation errors without undoing the committed state.
func (s *Service) revokeTokensFor(ctx context.Context, consents []DetailedConsent, userID string) error {
	if s == nil || s.tokenRevoker == nil {
		return nil
	}
	for _, detail := range consents {
		owner := strings.TrimSpace(userID)
		if owner == "" {
			for _, authorization := range detail.Authorizations {
				if strings.TrimSpace(authorization.UserID) != "" {
					owner = authorization.UserID
					break
				}
			}
		}
		if err := s.tokenRevoker.RevokeTokens(ctx, detail.ID, detail.ClientID, owner); err != nil {
			wrapped := goerrors.Wrap(err, goerrors.CategoryOperation, "token revocation failed").
				WithTextCode(ConsentErrorTokenRevocation)
			return s.mapError(wrapped)
		}
	}
	return nil
}

func accountPermissionInputs(authorizationID string, accountPermissions map[string][]string) []CreateMappingInput {
	inputs := make([]CreateMappingInput, 0, len(accountPermissions))
	for accountID, permissions := range accountPermissions {
		if len(permissions) == 0 {
			inputs = append(inputs, CreateMappingInput{
				AuthorizationID: authorizationID,
				AccountID:       accountID,
				Status:          MappingStatusActive,
			})
			continue
		}
		for _, permission := range permissions {
			inputs = append(inputs, CreateMappingInput{
				AuthorizationID: authorizationID,
				AccountID:       accountID,
				Permission:      permission,
				Status:          MappingStatusActive,
			})
		}
	}
	return inputs
}

func cloneAttributes(attributes map[string]string) map[string]string {
	if len(attributes) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(attributes))
	for key, value := range attributes {
		copied[key] = value
	}
	return copied
}
