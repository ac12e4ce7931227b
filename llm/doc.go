// Package llm defines the unified chat-completion surface shared by
// providers, toolsets and the runner: message and tool-call types, the
// request/response envelope, a provider-agnostic error taxonomy and the
// Provider interface itself.
package llm
