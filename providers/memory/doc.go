// Package memory defines the Store interface for conversation history.
// A conversation is a group of [Record] values sharing a group id; each
// record holds one question and the answer it received.
//
// The generation controller reads a group's history before every send and
// appends one record when a generation ends. Methods return errors so that
// database-backed implementations can surface failures instead of silently
// swallowing them. The bundled reference implementation lives in the
// sibling package [github.com/leofalp/chatbridge/providers/memory/inmemory].
package memory
