// Package inmemory provides an in-process implementation of
// [memory.Store]. Records live in a map keyed by group id and are lost when
// the process exits, which suits the CLI and tests.
package inmemory
