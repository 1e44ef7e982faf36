package consent

import (
	"fmt"

	consentcommand "github.com/goliatone/go-consent/command"
)

// Commands bundles the go-command wrappers over one lifecycle service.
type Commands struct {
	CreateConsent          *consentcommand.CreateConsentCommand
	CreateExclusiveConsent *consentcommand.CreateExclusiveConsentCommand
	BindUserAccounts       *consentcommand.BindUserAccountsCommand
	UpdateConsentStatus    *consentcommand.UpdateConsentStatusCommand
	RevokeConsent          *consentcommand.RevokeConsentCommand
	Reauthorize            *consentcommand.ReauthorizeCommand
	ReauthorizeWithNewAuth *consentcommand.ReauthorizeWithNewAuthCommand
	AmendConsentData       *consentcommand.AmendConsentDataCommand
	AmendDetailedConsent   *consentcommand.AmendDetailedConsentCommand
	ExpireOverdueConsents  *consentcommand.ExpireOverdueConsentsCommand
}

type Facade struct {
	service  consentcommand.MutatingService
	commands Commands
}

func NewFacade(service consentcommand.MutatingService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("consent: lifecycle service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateConsent:          consentcommand.NewCreateConsentCommand(service),
		CreateExclusiveConsent: consentcommand.NewCreateExclusiveConsentCommand(service),
		BindUserAccounts:       consentcommand.NewBindUserAccountsCommand(service),
		UpdateConsentStatus:    consentcommand.NewUpdateConsentStatusCommand(service),
		RevokeConsent:          consentcommand.NewRevokeConsentCommand(service),
		Reauthorize:            consentcommand.NewReauthorizeCommand(service),
		ReauthorizeWithNewAuth: consentcommand.NewReauthorizeWithNewAuthCommand(service),
		AmendConsentData:       consentcommand.NewAmendConsentDataCommand(service),
		AmendDetailedConsent:   consentcommand.NewAmendDetailedConsentCommand(service),
		ExpireOverdueConsents:  consentcommand.NewExpireOverdueConsentsCommand(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Service() consentcommand.MutatingService {
	if f == nil {
		return nil
	}
	return f.service
}
