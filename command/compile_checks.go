package command

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-consent/core"
)

var (
	_ gocmd.Commander[CreateConsentMessage]          = (*CreateConsentCommand)(nil)
	_ gocmd.Commander[CreateExclusiveConsentMessage] = (*CreateExclusiveConsentCommand)(nil)
	_ gocmd.Commander[BindUserAccountsMessage]       = (*BindUserAccountsCommand)(nil)
	_ gocmd.Commander[UpdateConsentStatusMessage]    = (*UpdateConsentStatusCommand)(nil)
	_ gocmd.Commander[RevokeConsentMessage]          = (*RevokeConsentCommand)(nil)
	_ gocmd.Commander[ReauthorizeMessage]            = (*ReauthorizeCommand)(nil)
	_ gocmd.Commander[ReauthorizeWithNewAuthMessage] = (*ReauthorizeWithNewAuthCommand)(nil)
	_ gocmd.Commander[AmendConsentDataMessage]       = (*AmendConsentDataCommand)(nil)
	_ gocmd.Commander[AmendDetailedConsentMessage]   = (*AmendDetailedConsentCommand)(nil)
	_ gocmd.Commander[ExpireOverdueConsentsMessage]  = (*ExpireOverdueConsentsCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
