// Package utils provides the low-level helpers shared by the bridge, the
// model directory and the adapters: buffered JSON requests ([DoPost],
// [DoGet]), streaming requests ([DoPostStream]) read with [LineScanner],
// readable messages from failed responses ([ExtractErrorMessage]), plus
// [Truncate] and [JSONPreview] for bodies copied into errors and logs.
package utils
