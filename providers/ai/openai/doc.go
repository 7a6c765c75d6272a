// Package openai implements [ai.FallbackAdapter] for the OpenAI API.
//
// Most models stream over /v1/chat/completions using the shared
// chat-completions wire. Next-generation families (gpt-5, o1, o3, o4) are
// routed to /v1/responses, whose stream uses typed events. Streaming those
// models can be refused for unverified organizations, so the adapter also
// builds a non-streaming request and parses its single response; the
// session controller decides when to use it.
package openai
