package consts

// UnifiedResponse context keys
const (
	// DETAIL is set by handlers that return data, e.g. queries and lists.
	// e.g: c.Set(DETAIL, value)
	DETAIL = "detail"

	// OPERATION is set by handlers that only report an operation result.
	// e.g: c.Set(OPERATION, "")
	OPERATION = "operation"
)
