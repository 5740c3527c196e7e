package api

// API limits and constants.
const (
	// MaxBodyBytes is the default request body cap (50 MiB). Images arrive
	// inline as data URLs, so bodies are large.
	MaxBodyBytes = 50 << 20

	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// Acknowledgement messages.
const (
	MsgMemoryCreated = "Memory created successfully"
	MsgMemoryUpdated = "Memory updated successfully"
	MsgMemoryDeleted = "Memory deleted successfully"
)
