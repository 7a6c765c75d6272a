// Package ai defines the shared, provider-agnostic types and interfaces used
// across the four chat backends (Ollama, LM Studio, Claude and OpenAI).
// Each adapter package is responsible for mapping these types to its own wire
// format, keeping the bridge and the session controller decoupled from
// provider-specific details.
//
// The central interface is [Adapter]: it builds requests, names endpoints and
// turns one raw stream line into at most one text delta. [FallbackAdapter] is
// an optional extension for providers whose streaming mode can be refused for
// some model families. Connection data flows through [ConnectionConfig] and
// incremental text is delivered to callers through [DeltaStream].
package ai
