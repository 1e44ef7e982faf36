package gojob

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-consent/core"

	job "github.com/goliatone/go-job"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := &core.JobExecutionMessage{
		JobID:          JobIDExpireOverdue,
		Parameters:     map[string]any{"batch_size": 100},
		IdempotencyKey: "idem-1",
		DedupPolicy:    "drop",
	}

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != original.JobID {
		t.Fatalf("expected job id %q, got %q", original.JobID, roundTrip.JobID)
	}
	if roundTrip.IdempotencyKey != original.IdempotencyKey {
		t.Fatalf("expected idempotency key %q, got %q", original.IdempotencyKey, roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != original.DedupPolicy {
		t.Fatalf("expected dedup policy %q, got %q", original.DedupPolicy, roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters["batch_size"] != 100 {
		t.Fatalf("expected parameters to survive mapping")
	}
}

func TestEnqueuerAdapter_MapsMessage(t *testing.T) {
	ctx := context.Background()
	enqueuer := &stubQueueEnqueuer{}
	adapter := NewEnqueuerAdapter(enqueuer)

	msg := &core.JobExecutionMessage{
		JobID:          JobIDRevokeBatch,
		Parameters:     map[string]any{"client_id": "client-1"},
		IdempotencyKey: "idem-revoke",
		DedupPolicy:    "merge",
	}
	if err := adapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if enqueuer.last == nil || enqueuer.last.JobID != JobIDRevokeBatch {
		t.Fatalf("expected mapped go-job message")
	}

	if err := adapter.Enqueue(ctx, nil); err == nil {
		t.Fatalf("expected nil-message enqueue to fail")
	}

	var unconfigured *EnqueuerAdapter
	if err := unconfigured.Enqueue(ctx, msg); err == nil {
		t.Fatalf("expected unconfigured adapter to fail")
	}
}

func TestNackRetryPolicyBoundaries(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	}

	bounded := policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
		Reason:  "transient",
	}, 1)
	if bounded.Delay != 10*time.Second {
		t.Fatalf("expected delay to be bounded, got %s", bounded.Delay)
	}
	if !bounded.Requeue {
		t.Fatalf("expected requeue before max attempts")
	}

	exhausted := policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   time.Second,
		Requeue: true,
		Reason:  "still failing",
	}, 3)
	if exhausted.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !exhausted.DeadLetter {
		t.Fatalf("expected dead-letter once max attempts is reached")
	}
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (e *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	e.last = msg
	return nil
}
