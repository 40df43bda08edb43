package ir

// Version constants for the record schema and the tool.
const (
	// RecordVersion is the record schema version. Bump when the JSON form changes.
	RecordVersion = "1"

	// ToolVersion is the incompat tool version.
	ToolVersion = "0.1.0"
)
