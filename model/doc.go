// Package model defines the provider agnostic abstraction for completion
// providers used by delegated response composition.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Let higher layers (the orchestrator's composer) remain decoupled from
//     vendor SDKs
//   - Facilitate lightweight mocking for tests (MockCompletion)
//
// Providers (OpenAI, Anthropic) implement the Completion interface from this
// package. The pipeline only ever needs a single non-streaming completion per
// request, so streaming is intentionally out of scope.
package model
