// Package transport builds the single *http.Client shared by the streaming
// bridge and the model directory: connection pooling, a per-host connection
// cap, header and overall timeouts, and cache bypass on every request.
package transport
