package constants

// Session / context keys
const (
	SessionCookieName = "checkin_session"
	ContextKeyUserID  = "user_id"
)

// Validation limits
const (
	MinPasswordLength = 8
	MinCondition      = 0
	MaxCondition      = 10
	MaxNoteLength     = 1000
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
