package observability

// Attribute keys, span names and event names shared by every layer that
// records observations.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the provider kind ("ollama", "lmstudio", "claude", "openai")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier sent in the request
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the full request URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMEndpointType is the wire shape used ("chat", "chat_completions", "messages", "responses")
	AttrLLMEndpointType = "llm.endpoint.type"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrModelCount is the number of models returned by a listing
	AttrModelCount = "llm.models.count"
)

// --- Generation Attributes ---

const (
	// AttrGenerationID identifies one Generate call within a session
	AttrGenerationID = "generation.id"

	// AttrGenerationOutcome is the terminal outcome ("completed", "cancelled", "failed")
	AttrGenerationOutcome = "generation.outcome"

	// AttrPromptLength is the prompt length in bytes
	AttrPromptLength = "generation.prompt.length"

	// AttrHistoryTurns is the number of prior turns sent with the prompt
	AttrHistoryTurns = "generation.history.turns"

	// AttrHasImage is set when an image was attached to the prompt
	AttrHasImage = "generation.image"

	// AttrTokensPerSecond is the estimated throughput of a completed generation
	AttrTokensPerSecond = "generation.tokens_per_second" // #nosec G101 -- Not a credential

	// AttrUsedFallback is set when the non-streaming request produced the text
	AttrUsedFallback = "generation.fallback"
)

// --- Stream Attributes ---

const (
	// AttrStreamLines is the number of non-blank lines read from the body
	AttrStreamLines = "stream.lines"

	// AttrStreamSkipped is the number of lines that produced no delta and no terminal marker
	AttrStreamSkipped = "stream.skipped"

	// AttrStreamDeltas is the number of text deltas delivered
	AttrStreamDeltas = "stream.deltas"

	// AttrStreamFinal is set when a terminal marker was seen
	AttrStreamFinal = "stream.final"

	// AttrStreamLine is a (truncated) raw line, logged at TRACE
	AttrStreamLine = "stream.line"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Memory Attributes ---

const (
	// AttrMemoryGroupID is the conversation group a turn belongs to
	AttrMemoryGroupID = "memory.group_id"

	// AttrMemoryMessageRole is the role of the turn being stored
	AttrMemoryMessageRole = "memory.message.role"

	// AttrMemoryTotalMessages is the number of records in a group
	AttrMemoryTotalMessages = "memory.total_messages"
)

// --- Settings Attributes ---

const (
	// AttrSettingsPath is the settings file being loaded or watched
	AttrSettingsPath = "settings.path"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanGeneration covers one Generate call from start to outcome
	SpanGeneration = "session.generation"

	// SpanStreamRequest covers a streaming provider request
	SpanStreamRequest = "llm.stream"

	// SpanOneShotRequest covers a non-streaming fallback request
	SpanOneShotRequest = "llm.oneshot"

	// SpanListModels covers a model listing request
	SpanListModels = "llm.list_models"
)

// --- Event Names ---

const (
	// EventStreamStart marks the start of body consumption
	EventStreamStart = "llm.stream.start"

	// EventStreamEnd marks the end of body consumption
	EventStreamEnd = "llm.stream.end"

	// EventFallbackStart marks the switch to the non-streaming request
	EventFallbackStart = "llm.fallback.start"

	// EventMemoryAppend marks when a turn is appended to the store
	EventMemoryAppend = "memory.append"
)
