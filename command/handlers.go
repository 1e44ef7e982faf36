package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-consent/core"
)

// MutatingService is the slice of the consent lifecycle the command layer
// drives. Read paths stay on the service directly.
type MutatingService interface {
	CreateAuthorizableConsent(ctx context.Context, req core.CreateConsentRequest) (core.DetailedConsent, error)
	CreateExclusiveConsent(ctx context.Context, req core.CreateExclusiveConsentRequest) (core.DetailedConsent, error)
	BindUserAccountsToConsent(ctx context.Context, req core.BindUserAccountsRequest) error
	UpdateConsentStatus(ctx context.Context, consentID string, newStatus core.ConsentStatus, userID string, reason string) error
	RevokeConsentWithOptions(ctx context.Context, req core.RevokeConsentRequest) error
	ReauthorizeExistingAuthResource(ctx context.Context, req core.ReauthorizeRequest) error
	ReauthorizeConsentWithNewAuthResource(ctx context.Context, req core.ReauthorizeWithNewAuthRequest) error
	AmendConsentData(ctx context.Context, req core.AmendConsentDataRequest) error
	AmendDetailedConsent(ctx context.Context, req core.AmendDetailedConsentRequest) (core.DetailedConsent, error)
	ExpireOverdueConsents(ctx context.Context, now time.Time) ([]string, error)
}

type CreateConsentCommand struct {
	service MutatingService
}

func NewCreateConsentCommand(service MutatingService) *CreateConsentCommand {
	return &CreateConsentCommand{service: service}
}

func (c *CreateConsentCommand) Execute(ctx context.Context, msg CreateConsentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: consent service is required")
	}
	out, err := c.service.CreateAuthorizableConsent(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateExclusiveConsentCommand struct {
	service MutatingService
}

func NewCreateExclusiveConsentCommand(service MutatingService) *CreateExclusiveConsentCommand {
	return &CreateExclusiveConsentCommand{service: service}
}

func (c *CreateExclusiveConsentCommand) Execute(ctx context.Context, msg CreateExclusiveConsentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: consent service is required")
	}
	out, err := c.service.CreateExclusiveConsent(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type BindUserAccountsCommand struct {
	service MutatingService
}

func NewBindUserAccountsCommand(service MutatingService) *BindUserAccountsCommand {
	return &BindUserAccountsCommand{service: service}
}

func (c *BindUserAccountsCommand) Execute(ctx context.Context, msg BindUserAccountsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: binding service is required")
	}
	return c.service.BindUserAccountsToConsent(ctx, msg.Request)
}

type UpdateConsentStatusCommand struct {
	service MutatingService
}

func NewUpdateConsentStatusCommand(service MutatingService) *UpdateConsentStatusCommand {
	return &UpdateConsentStatusCommand{service: service}
}

func (c *UpdateConsentStatusCommand) Execute(ctx context.Context, msg UpdateConsentStatusMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: status service is required")
	}
	return c.service.UpdateConsentStatus(ctx, msg.ConsentID, msg.Status, msg.UserID, msg.Reason)
}

type RevokeConsentCommand struct {
	service MutatingService
}

func NewRevokeConsentCommand(service MutatingService) *RevokeConsentCommand {
	return &RevokeConsentCommand{service: service}
}

func (c *RevokeConsentCommand) Execute(ctx context.Context, msg RevokeConsentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revocation service is required")
	}
	return c.service.RevokeConsentWithOptions(ctx, msg.Request)
}

type ReauthorizeCommand struct {
	service MutatingService
}

func NewReauthorizeCommand(service MutatingService) *ReauthorizeCommand {
	return &ReauthorizeCommand{service: service}
}

func (c *ReauthorizeCommand) Execute(ctx context.Context, msg ReauthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: re-authorization service is required")
	}
	return c.service.ReauthorizeExistingAuthResource(ctx, msg.Request)
}

type ReauthorizeWithNewAuthCommand struct {
	service MutatingService
}

func NewReauthorizeWithNewAuthCommand(service MutatingService) *ReauthorizeWithNewAuthCommand {
	return &ReauthorizeWithNewAuthCommand{service: service}
}

func (c *ReauthorizeWithNewAuthCommand) Execute(ctx context.Context, msg ReauthorizeWithNewAuthMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: re-authorization service is required")
	}
	return c.service.ReauthorizeConsentWithNewAuthResource(ctx, msg.Request)
}

type AmendConsentDataCommand struct {
	service MutatingService
}

func NewAmendConsentDataCommand(service MutatingService) *AmendConsentDataCommand {
	return &AmendConsentDataCommand{service: service}
}

func (c *AmendConsentDataCommand) Execute(ctx context.Context, msg AmendConsentDataMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: amendment service is required")
	}
	return c.service.AmendConsentData(ctx, msg.Request)
}

type AmendDetailedConsentCommand struct {
	service MutatingService
}

func NewAmendDetailedConsentCommand(service MutatingService) *AmendDetailedConsentCommand {
	return &AmendDetailedConsentCommand{service: service}
}

func (c *AmendDetailedConsentCommand) Execute(ctx context.Context, msg AmendDetailedConsentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: amendment service is required")
	}
	out, err := c.service.AmendDetailedConsent(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ExpireOverdueConsentsCommand struct {
	service MutatingService
}

func NewExpireOverdueConsentsCommand(service MutatingService) *ExpireOverdueConsentsCommand {
	return &ExpireOverdueConsentsCommand{service: service}
}

func (c *ExpireOverdueConsentsCommand) Execute(ctx context.Context, msg ExpireOverdueConsentsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: expiry service is required")
	}
	now := msg.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	out, err := c.service.ExpireOverdueConsents(ctx, now)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
