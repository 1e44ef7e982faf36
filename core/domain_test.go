package core

import (
	"errors"
	"testing"
	"time"
)

func TestConsentStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    ConsentStatus
		to      ConsentStatus
		allowed bool
	}{
		{"awaiting authorisation to authorised", ConsentStatusAwaitingAuthorisation, ConsentStatusAuthorised, true},
		{"awaiting authorisation to rejected", ConsentStatusAwaitingAuthorisation, ConsentStatusRejected, true},
		{"awaiting authorisation to revoked", ConsentStatusAwaitingAuthorisation, ConsentStatusRevoked, true},
		{"awaiting authorisation to awaiting upload", ConsentStatusAwaitingAuthorisation, ConsentStatusAwaitingUpload, true},
		{"awaiting authorisation to expired", ConsentStatusAwaitingAuthorisation, ConsentStatusExpired, false},
		{"awaiting upload to authorised", ConsentStatusAwaitingUpload, ConsentStatusAuthorised, true},
		{"awaiting upload to rejected", ConsentStatusAwaitingUpload, ConsentStatusRejected, true},
		{"awaiting upload to revoked", ConsentStatusAwaitingUpload, ConsentStatusRevoked, true},
		{"awaiting upload to expired", ConsentStatusAwaitingUpload, ConsentStatusExpired, false},
		{"authorised to revoked", ConsentStatusAuthorised, ConsentStatusRevoked, true},
		{"authorised to expired", ConsentStatusAuthorised, ConsentStatusExpired, true},
		{"authorised to awaiting upload", ConsentStatusAuthorised, ConsentStatusAwaitingUpload, true},
		{"authorised to rejected", ConsentStatusAuthorised, ConsentStatusRejected, false},
		{"authorised to awaiting authorisation", ConsentStatusAuthorised, ConsentStatusAwaitingAuthorisation, false},
		{"revoked to authorised", ConsentStatusRevoked, ConsentStatusAuthorised, false},
		{"rejected to authorised", ConsentStatusRejected, ConsentStatusAuthorised, false},
		{"expired to authorised", ConsentStatusExpired, ConsentStatusAuthorised, false},
	}

	now := time.Now().UTC()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consent := ConsentResource{Status: tc.from}
			err := consent.TransitionTo(tc.to, now)
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected transition %s -> %s to be allowed, got %v", tc.from, tc.to, err)
				}
				if consent.Status != tc.to {
					t.Fatalf("expected status %s, got %s", tc.to, consent.Status)
				}
				if !consent.UpdatedAt.Equal(now) {
					t.Fatalf("expected UpdatedAt to advance")
				}
				return
			}
			if !errors.Is(err, ErrInvalidConsentStatusTransition) {
				t.Fatalf("expected ErrInvalidConsentStatusTransition, got %v", err)
			}
			if consent.Status != tc.from {
				t.Fatalf("status must not change on a rejected transition, got %s", consent.Status)
			}
		})
	}
}

func TestConsentStatusTransition_SameStatusIsNoOp(t *testing.T) {
	now := time.Now().UTC()
	consent := ConsentResource{Status: ConsentStatusRevoked}
	if err := consent.TransitionTo(ConsentStatusRevoked, now); err != nil {
		t.Fatalf("same-status transition must succeed even on terminal statuses: %v", err)
	}
	if !consent.UpdatedAt.Equal(now) {
		t.Fatalf("same-status transition must refresh UpdatedAt")
	}
}

func TestConsentStatusIsTerminal(t *testing.T) {
	terminal := []ConsentStatus{ConsentStatusRevoked, ConsentStatusRejected, ConsentStatusExpired}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	live := []ConsentStatus{ConsentStatusAwaitingAuthorisation, ConsentStatusAwaitingUpload, ConsentStatusAuthorised}
	for _, status := range live {
		if status.IsTerminal() {
			t.Fatalf("expected %s to be live", status)
		}
	}
}

func TestAuthorizationStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    AuthorizationStatus
		to      AuthorizationStatus
		allowed bool
	}{
		{"awaiting to authorised", AuthorizationStatusAwaitingAuthorisation, AuthorizationStatusAuthorised, true},
		{"awaiting to rejected", AuthorizationStatusAwaitingAuthorisation, AuthorizationStatusRejected, true},
		{"awaiting to consumed", AuthorizationStatusAwaitingAuthorisation, AuthorizationStatusConsumed, false},
		{"awaiting to revoked", AuthorizationStatusAwaitingAuthorisation, AuthorizationStatusRevoked, false},
		{"authorised to consumed", AuthorizationStatusAuthorised, AuthorizationStatusConsumed, true},
		{"authorised to revoked", AuthorizationStatusAuthorised, AuthorizationStatusRevoked, true},
		{"authorised to rejected", AuthorizationStatusAuthorised, AuthorizationStatusRejected, false},
		{"rejected to authorised", AuthorizationStatusRejected, AuthorizationStatusAuthorised, false},
		{"consumed to authorised", AuthorizationStatusConsumed, AuthorizationStatusAuthorised, false},
		{"revoked to authorised", AuthorizationStatusRevoked, AuthorizationStatusAuthorised, false},
	}

	now := time.Now().UTC()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authorization := AuthorizationResource{Status: tc.from}
			err := authorization.TransitionTo(tc.to, now)
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected transition %s -> %s to be allowed, got %v", tc.from, tc.to, err)
				}
				if authorization.Status != tc.to {
					t.Fatalf("expected status %s, got %s", tc.to, authorization.Status)
				}
				return
			}
			if !errors.Is(err, ErrInvalidAuthorizationStatusTransition) {
				t.Fatalf("expected ErrInvalidAuthorizationStatusTransition, got %v", err)
			}
		})
	}
}

func TestMappingTransitionTo(t *testing.T) {
	mapping := ConsentMapping{Status: MappingStatusActive}
	if err := mapping.TransitionTo(MappingStatusInactive); err != nil {
		t.Fatalf("active -> inactive: %v", err)
	}
	if err := mapping.TransitionTo(MappingStatusActive); err != nil {
		t.Fatalf("inactive -> active: %v", err)
	}
	if err := mapping.TransitionTo(MappingStatus("suspended")); !errors.Is(err, ErrInvalidMappingStatusTransition) {
		t.Fatalf("expected ErrInvalidMappingStatusTransition, got %v", err)
	}
}

func TestConsentResourceValidate(t *testing.T) {
	valid := newTestConsent("client-1", ConsentTypeAccounts, ConsentStatusAwaitingAuthorisation)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid consent, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*ConsentResource)
	}{
		{"missing client id", func(c *ConsentResource) { c.ClientID = " " }},
		{"missing receipt", func(c *ConsentResource) { c.Receipt = "" }},
		{"missing type", func(c *ConsentResource) { c.Type = "" }},
		{"missing status", func(c *ConsentResource) { c.Status = "" }},
		{"negative frequency", func(c *ConsentResource) { c.Frequency = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consent := valid
			tc.mutate(&consent)
			if err := consent.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestConsentResourceExpirable(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	unbounded := ConsentResource{ValidityPeriod: 0}
	if unbounded.Expirable(now) {
		t.Fatalf("a consent without a validity bound never expires")
	}

	future := ConsentResource{ValidityPeriod: now.Add(time.Hour).Unix()}
	if future.Expirable(now) {
		t.Fatalf("a consent with a future bound is not expirable yet")
	}

	atBound := ConsentResource{ValidityPeriod: now.Unix()}
	if !atBound.Expirable(now) {
		t.Fatalf("a consent is expirable exactly at its bound")
	}

	past := ConsentResource{ValidityPeriod: now.Add(-time.Minute).Unix()}
	if !past.Expirable(now) {
		t.Fatalf("a consent past its bound is expirable")
	}
}

func TestDetailedConsentActiveMappings(t *testing.T) {
	detail := DetailedConsent{
		Mappings: []ConsentMapping{
			{ID: "m1", AuthorizationID: "a1", AccountID: "acct-1", Status: MappingStatusActive},
			{ID: "m2", AuthorizationID: "a1", AccountID: "acct-2", Status: MappingStatusInactive},
			{ID: "m3", AuthorizationID: "a2", AccountID: "acct-3", Status: MappingStatusActive},
		},
	}

	all := detail.ActiveMappings("")
	if len(all) != 2 {
		t.Fatalf("expected 2 active mappings, got %d", len(all))
	}

	scoped := detail.ActiveMappings("a1")
	if len(scoped) != 1 || scoped[0].ID != "m1" {
		t.Fatalf("expected only m1 for authorization a1, got %+v", scoped)
	}
}

func TestMappingIDs(t *testing.T) {
	ids := MappingIDs([]ConsentMapping{{ID: "m1"}, {ID: "m2"}})
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Fatalf("unexpected mapping ids: %v", ids)
	}
}
