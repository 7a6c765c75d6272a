// Package openaicompat holds the chat-completions wire format shared by every
// server that speaks OpenAI's /v1/chat/completions dialect: LM Studio and the
// legacy OpenAI models. It builds message arrays, parses "data:" stream lines
// and model listings, and is used by the lmstudio and openai adapters.
package openaicompat
