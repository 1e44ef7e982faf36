// Package core contains the consent domain model, status state machines,
// and lifecycle orchestration. Storage and transport adapters depend on this
// package; core must not depend on any specific adapter.
package core
