// Package session turns the streaming bridge into a chat conversation.
//
// A [Controller] owns one provider connection and the turns exchanged over
// it. [Controller.Generate] starts a generation in its own goroutine and
// returns a [Generation] whose deltas can be ranged over while text arrives.
// Only one generation runs at a time: a new Generate cancels the previous
// one, and its outcome becomes Cancelled.
//
// Every generation ends in exactly one outcome:
//
//   - Completed: the full text, optionally followed by the model name and
//     an estimated tokens/sec figure.
//   - Cancelled: whatever arrived before the cancellation.
//   - Failed: the error plus any partial text.
//
// Partial answers are never dropped. They are kept in the transcript and the
// conversation store with a short suffix telling cancellation and failure
// apart.
//
// For models whose streaming mode the account may not be allowed to use,
// a failed streaming attempt that produced no text is followed by exactly
// one non-streaming request, and its answer is delivered as a single delta.
package session
