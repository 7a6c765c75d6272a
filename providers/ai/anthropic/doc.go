// Package anthropic implements [ai.Adapter] for Anthropic's Messages API.
//
// Requests authenticate with the x-api-key header and pin the wire format with
// anthropic-version. The stream is SSE with typed events; only
// content_block_delta text and message_stop matter to the bridge, everything
// else (message_start, ping, event: lines) is skipped.
package anthropic
