// Package persona resolves the prompt and tool policy applied to one request.
// A resolved Profile merges three sources in order: the built-in default, an
// optional stored override, and optional stored preferences. Every lookup is
// best-effort; resolution never fails a request.
package persona
