package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidConsentStatusTransition       = errors.New("core: invalid consent status transition")
	ErrInvalidAuthorizationStatusTransition = errors.New("core: invalid authorization status transition")
	ErrInvalidMappingStatusTransition       = errors.New("core: invalid mapping status transition")
	ErrConsentNotFound                      = errors.New("core: consent not found")
	ErrAuthorizationNotFound                = errors.New("core: authorization not found")
	ErrConsentFileNotFound                  = errors.New("core: consent file not found")
)

type ConsentType string

const (
	ConsentTypeAccounts           ConsentType = "accounts"
	ConsentTypePayments           ConsentType = "payments"
	ConsentTypeFundsConfirmations ConsentType = "fundsconfirmations"
)

type ConsentStatus string

const (
	ConsentStatusAwaitingAuthorisation ConsentStatus = "AwaitingAuthorisation"
	ConsentStatusAwaitingUpload        ConsentStatus = "AwaitingUpload"
	ConsentStatusAuthorised            ConsentStatus = "Authorised"
	ConsentStatusRejected              ConsentStatus = "Rejected"
	ConsentStatusRevoked               ConsentStatus = "Revoked"
	ConsentStatusExpired               ConsentStatus = "Expired"
)

// IsTerminal reports whether no further consent status transition is legal.
func (s ConsentStatus) IsTerminal() bool {
	switch s {
	case ConsentStatusRevoked, ConsentStatusRejected, ConsentStatusExpired:
		return true
	}
	return false
}

type ConsentResource struct {
	ID             string
	ClientID       string
	Receipt        string
	Type           ConsentType
	Status         ConsentStatus
	Frequency      int
	ValidityPeriod int64
	Recurring      bool
	Attributes     map[string]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate enforces the mandatory persistence fields of a consent.
func (c *ConsentResource) Validate() error {
	if c == nil {
		return fmt.Errorf("core: consent resource is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: consent client id is required")
	}
	if strings.TrimSpace(c.Receipt) == "" {
		return fmt.Errorf("core: consent receipt is required")
	}
	if strings.TrimSpace(string(c.Type)) == "" {
		return fmt.Errorf("core: consent type is required")
	}
	if strings.TrimSpace(string(c.Status)) == "" {
		return fmt.Errorf("core: consent status is required")
	}
	if c.Frequency < 0 {
		return fmt.Errorf("core: consent frequency must not be negative")
	}
	return nil
}

// Expirable reports whether a validity bound applies and has elapsed.
func (c *ConsentResource) Expirable(now time.Time) bool {
	if c == nil || c.ValidityPeriod == 0 {
		return false
	}
	return now.UTC().Unix() >= c.ValidityPeriod
}

func (c *ConsentResource) TransitionTo(status ConsentStatus, now time.Time) error {
	if c == nil {
		return nil
	}
	if c.Status == status {
		c.UpdatedAt = now
		return nil
	}
	if !consentTransitionAllowed(c.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidConsentStatusTransition, c.Status, status)
	}
	c.Status = status
	c.UpdatedAt = now
	return nil
}

func consentTransitionAllowed(current, next ConsentStatus) bool {
	allowed := map[ConsentStatus]map[ConsentStatus]struct{}{
		ConsentStatusAwaitingAuthorisation: {
			ConsentStatusAuthorised:     {},
			ConsentStatusRejected:       {},
			ConsentStatusRevoked:        {},
			ConsentStatusAwaitingUpload: {},
		},
		ConsentStatusAwaitingUpload: {
			ConsentStatusAuthorised: {},
			ConsentStatusRejected:   {},
			ConsentStatusRevoked:    {},
		},
		ConsentStatusAuthorised: {
			ConsentStatusRevoked:        {},
			ConsentStatusExpired:        {},
			ConsentStatusAwaitingUpload: {},
		},
		ConsentStatusRevoked:  {},
		ConsentStatusRejected: {},
		ConsentStatusExpired:  {},
	}
	_, ok := allowed[current][next]
	return ok
}

type AuthorizationStatus string

const (
	AuthorizationStatusAwaitingAuthorisation AuthorizationStatus = "awaitingAuthorisation"
	AuthorizationStatusAuthorised            AuthorizationStatus = "authorised"
	AuthorizationStatusRejected              AuthorizationStatus = "rejected"
	AuthorizationStatusConsumed              AuthorizationStatus = "consumed"
	AuthorizationStatusRevoked               AuthorizationStatus = "revoked"
)

type AuthorizationResource struct {
	ID        string
	ConsentID string
	UserID    string
	Status    AuthorizationStatus
	Type      string
	UpdatedAt time.Time
}

func (a *AuthorizationResource) TransitionTo(status AuthorizationStatus, now time.Time) error {
	if a == nil {
		return nil
	}
	if a.Status == status {
		a.UpdatedAt = now
		return nil
	}
	if !authorizationTransitionAllowed(a.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidAuthorizationStatusTransition, a.Status, status)
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}

func authorizationTransitionAllowed(current, next AuthorizationStatus) bool {
	allowed := map[AuthorizationStatus]map[AuthorizationStatus]struct{}{
		AuthorizationStatusAwaitingAuthorisation: {
			AuthorizationStatusAuthorised: {},
			AuthorizationStatusRejected:   {},
		},
		AuthorizationStatusAuthorised: {
			AuthorizationStatusConsumed: {},
			AuthorizationStatusRevoked:  {},
		},
		AuthorizationStatusRejected: {},
		AuthorizationStatusConsumed: {},
		AuthorizationStatusRevoked:  {},
	}
	_, ok := allowed[current][next]
	return ok
}

type MappingStatus string

const (
	MappingStatusActive   MappingStatus = "active"
	MappingStatusInactive MappingStatus = "inactive"
)

// Mapping statuses flip both ways: re-authorization is allowed to
// reactivate a mapping that an earlier revoke deactivated.
type ConsentMapping struct {
	ID              string
	AuthorizationID string
	AccountID       string
	Permission      string
	Status          MappingStatus
}

func (m *ConsentMapping) TransitionTo(status MappingStatus) error {
	if m == nil {
		return nil
	}
	if status != MappingStatusActive && status != MappingStatusInactive {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidMappingStatusTransition, m.Status, status)
	}
	m.Status = status
	return nil
}

type StatusAuditRecord struct {
	ID             string
	ConsentID      string
	Status         ConsentStatus
	ActionTime     time.Time
	Reason         string
	ActionBy       string
	PreviousStatus ConsentStatus
}

type ConsentFile struct {
	ConsentID string
	Content   []byte
}

// DetailedConsent is the full aggregate handed to callers: the consent row,
// its complete attribute map, every authorization, and every mapping across
// those authorizations. It is assembled on read, never persisted as one unit.
type DetailedConsent struct {
	ConsentResource
	Authorizations []AuthorizationResource
	Mappings       []ConsentMapping
}

// ActiveMappings returns the mappings currently marked active, optionally
// narrowed to one authorization.
func (d DetailedConsent) ActiveMappings(authorizationID string) []ConsentMapping {
	authorizationID = strings.TrimSpace(authorizationID)
	out := make([]ConsentMapping, 0, len(d.Mappings))
	for _, mapping := range d.Mappings {
		if mapping.Status != MappingStatusActive {
			continue
		}
		if authorizationID != "" && mapping.AuthorizationID != authorizationID {
			continue
		}
		out = append(out, mapping)
	}
	return out
}

// MappingIDs collects the identifiers of the supplied mappings.
func MappingIDs(mappings []ConsentMapping) []string {
	out := make([]string, 0, len(mappings))
	for _, mapping := range mappings {
		out = append(out, mapping.ID)
	}
	return out
}

type HistorySection string

const (
	HistorySectionConsentData HistorySection = "consent_data"
	HistorySectionAttributes  HistorySection = "consent_attributes"
	HistorySectionMappings    HistorySection = "consent_mappings"
)

// HistoryRow is one persisted amendment fragment: the serialized prior value
// of a single logical section at one amendment event.
type HistoryRow struct {
	HistoryID string
	ConsentID string
	RecordID  string
	Section   HistorySection
	Data      string
	Reason    string
	AmendedAt time.Time
}

// ConsentHistory is one reconstructed amendment: the reason, the timestamp,
// and the full consent state as it stood before that amendment, for the
// sections the amendment touched.
type ConsentHistory struct {
	HistoryID string
	ConsentID string
	Reason    string
	AmendedAt time.Time
	Detail    DetailedConsent
	Changed   map[HistorySection]string
}
