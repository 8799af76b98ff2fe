package ir

// Version constants for records and engine.
const (
	// RecordVersion is the record schema version written to the journal.
	RecordVersion = "1"

	// EngineVersion is the sentropy engine version.
	EngineVersion = "0.1.0"
)
