package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-consent/core"
)

const (
	TypeCreateConsent          = "consent.command.create"
	TypeCreateExclusiveConsent = "consent.command.create_exclusive"
	TypeBindUserAccounts       = "consent.command.bind_accounts"
	TypeUpdateConsentStatus    = "consent.command.update_status"
	TypeRevokeConsent          = "consent.command.revoke"
	TypeReauthorize            = "consent.command.reauthorize"
	TypeReauthorizeNewAuth     = "consent.command.reauthorize_new_auth"
	TypeAmendConsentData       = "consent.command.amend_data"
	TypeAmendDetailedConsent   = "consent.command.amend_detailed"
	TypeExpireOverdueConsents  = "consent.command.expire_overdue"
)

type CreateConsentMessage struct {
	Request core.CreateConsentRequest
}

func (CreateConsentMessage) Type() string { return TypeCreateConsent }

func (m CreateConsentMessage) Validate() error {
	return validateNewConsent(m.Request.Consent)
}

type CreateExclusiveConsentMessage struct {
	Request core.CreateExclusiveConsentRequest
}

func (CreateExclusiveConsentMessage) Type() string { return TypeCreateExclusiveConsent }

func (m CreateExclusiveConsentMessage) Validate() error {
	if err := validateNewConsent(m.Request.Consent); err != nil {
		return err
	}
	if strings.TrimSpace(string(m.Request.ApplicableExistingStatus)) == "" {
		return fmt.Errorf("command: applicable existing status is required")
	}
	if strings.TrimSpace(string(m.Request.NewExistingConsentStatus)) == "" {
		return fmt.Errorf("command: new existing-consent status is required")
	}
	return nil
}

type BindUserAccountsMessage struct {
	Request core.BindUserAccountsRequest
}

func (BindUserAccountsMessage) Type() string { return TypeBindUserAccounts }

func (m BindUserAccountsMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(m.Request.AuthorizationID) == "" {
		return fmt.Errorf("command: authorization id is required")
	}
	if strings.TrimSpace(m.Request.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	return nil
}

type UpdateConsentStatusMessage struct {
	ConsentID string
	Status    core.ConsentStatus
	UserID    string
	Reason    string
}

func (UpdateConsentStatusMessage) Type() string { return TypeUpdateConsentStatus }

func (m UpdateConsentStatusMessage) Validate() error {
	if strings.TrimSpace(m.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(string(m.Status)) == "" {
		return fmt.Errorf("command: consent status is required")
	}
	return nil
}

type RevokeConsentMessage struct {
	Request core.RevokeConsentRequest
}

func (RevokeConsentMessage) Type() string { return TypeRevokeConsent }

func (m RevokeConsentMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(string(m.Request.RevokedStatus)) == "" {
		return fmt.Errorf("command: revoked status is required")
	}
	return nil
}

type ReauthorizeMessage struct {
	Request core.ReauthorizeRequest
}

func (ReauthorizeMessage) Type() string { return TypeReauthorize }

func (m ReauthorizeMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(m.Request.AuthorizationID) == "" {
		return fmt.Errorf("command: authorization id is required")
	}
	return nil
}

type ReauthorizeWithNewAuthMessage struct {
	Request core.ReauthorizeWithNewAuthRequest
}

func (ReauthorizeWithNewAuthMessage) Type() string { return TypeReauthorizeNewAuth }

func (m ReauthorizeWithNewAuthMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(m.Request.AuthorizationID) == "" {
		return fmt.Errorf("command: authorization id is required")
	}
	if strings.TrimSpace(m.Request.NewAuthType) == "" {
		return fmt.Errorf("command: replacement authorization type is required")
	}
	return nil
}

type AmendConsentDataMessage struct {
	Request core.AmendConsentDataRequest
}

func (AmendConsentDataMessage) Type() string { return TypeAmendConsentData }

func (m AmendConsentDataMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	if strings.TrimSpace(m.Request.Receipt) == "" && m.Request.ValidityPeriod == nil {
		return fmt.Errorf("command: at least one of receipt or validity period is required")
	}
	return nil
}

type AmendDetailedConsentMessage struct {
	Request core.AmendDetailedConsentRequest
}

func (AmendDetailedConsentMessage) Type() string { return TypeAmendDetailedConsent }

func (m AmendDetailedConsentMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConsentID) == "" {
		return fmt.Errorf("command: consent id is required")
	}
	return nil
}

type ExpireOverdueConsentsMessage struct {
	Now time.Time
}

func (ExpireOverdueConsentsMessage) Type() string { return TypeExpireOverdueConsents }

func (m ExpireOverdueConsentsMessage) Validate() error {
	return nil
}

func validateNewConsent(consent core.ConsentResource) error {
	if strings.TrimSpace(consent.ClientID) == "" {
		return fmt.Errorf("command: client id is required")
	}
	if strings.TrimSpace(string(consent.Type)) == "" {
		return fmt.Errorf("command: consent type is required")
	}
	if strings.TrimSpace(string(consent.Status)) == "" {
		return fmt.Errorf("command: consent status is required")
	}
	return nil
}
