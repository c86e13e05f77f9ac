// Package classify turns arbitrary failure values into short, display-safe
// errors drawn from a closed set of categories.
package classify

import "fmt"

// Category is one member of the closed failure taxonomy.
type Category string

const (
	Connectivity      Category = "connectivity"
	InvalidRequest    Category = "invalid_request"
	Auth              Category = "auth"
	Forbidden         Category = "forbidden"
	NotFound          Category = "not_found"
	Unprocessable     Category = "unprocessable"
	RateLimited       Category = "rate_limited"
	Server            Category = "server"
	Unavailable       Category = "unavailable"
	AIProcessing      Category = "ai_processing"
	Timeout           Category = "timeout"
	Session           Category = "session"
	SessionRequired   Category = "session_required"
	Generic           Category = "generic"
	UnknownProcessing Category = "unknown_processing"
	Unknown           Category = "unknown"
	Unexpected        Category = "unexpected"
	FileTooLarge      Category = "file_too_large"
	UnsupportedType   Category = "unsupported_type"
	UploadFailed      Category = "upload_failed"
)

// Severity mirrors the toast level a classified error is shown with.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is a classified failure. Title and Message are safe to show to a user.
type Error struct {
	Category Category
	Title    string
	Message  string
	Severity Severity

	// Detail is a sanitized backend-supplied message, kept for diagnostics only.
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

type canned struct {
	title    string
	message  string
	severity Severity
}

// cannedMessages holds the fixed title/message pair of every category except
// Generic, whose message is the validated upstream text.
var cannedMessages = map[Category]canned{
	Connectivity: {
		"Connection Error",
		"Unable to connect to the research assistant. Please check your internet connection and try again.",
		SeverityError,
	},
	InvalidRequest: {
		"Invalid Request",
		"The request format was incorrect. Please try rephrasing your query or check your inputs.",
		SeverityError,
	},
	Auth: {
		"Authentication Error",
		"Authentication failed. The API key might be invalid or expired.",
		SeverityError,
	},
	Forbidden: {
		"Access Denied",
		"You don't have permission to perform this action.",
		SeverityWarning,
	},
	NotFound: {
		"Not Found",
		"The requested resource could not be found.",
		SeverityError,
	},
	Unprocessable: {
		"Processing Error",
		"There was an issue processing your request. Please try simplifying your query or try again.",
		SeverityError,
	},
	RateLimited: {
		"Rate Limited",
		"Too many requests. Please wait a moment before trying again.",
		SeverityWarning,
	},
	Server: {
		"Server Error",
		"The research assistant is experiencing technical difficulties. Please try again in a few minutes.",
		SeverityError,
	},
	Unavailable: {
		"Service Unavailable",
		"The research assistant is temporarily unavailable. Please try again later.",
		SeverityError,
	},
	AIProcessing: {
		"AI Processing Error",
		"The AI assistant encountered an issue while processing your request. Please try rephrasing your query or try again.",
		SeverityError,
	},
	Timeout: {
		"Request Timeout",
		"Your request took too long to process. Please try again with a simpler query.",
		SeverityWarning,
	},
	Session: {
		"Session Error",
		"There was an issue with your chat session. Please try creating a new chat.",
		SeverityWarning,
	},
	SessionRequired: {
		"Session Required",
		"Please create or select a chat session first to upload files.",
		SeverityError,
	},
	UnknownProcessing: {
		"Processing Error",
		"An unexpected error occurred while processing your request. Please try again.",
		SeverityError,
	},
	Unknown: {
		"Unknown Error",
		"An unknown error occurred.",
		SeverityError,
	},
	Unexpected: {
		"Something Went Wrong",
		"An unexpected error occurred. Please try again, and if the problem persists, please restart the client.",
		SeverityError,
	},
	FileTooLarge: {
		"File Too Large",
		"One or more files are too large. Please select files smaller than 10MB.",
		SeverityWarning,
	},
	UnsupportedType: {
		"Unsupported File Type",
		"Please upload only supported file types (PDF, DOCX, TXT).",
		SeverityWarning,
	},
	UploadFailed: {
		"Upload Failed",
		"Unable to upload your file(s) at this time. Please check the file(s) and try again.",
		SeverityError,
	},
}

// New returns the canned classified error for a category. Generic has no
// canned message; use passthrough for it.
func New(c Category) *Error {
	m, ok := cannedMessages[c]
	if !ok {
		m = cannedMessages[Unexpected]
	}
	return &Error{Category: c, Title: m.title, Message: m.message, Severity: m.severity}
}

// withText keeps the category but swaps in a more specific canned text.
func withText(c Category, t canned) *Error {
	return &Error{Category: c, Title: t.title, Message: t.message, Severity: t.severity}
}

func passthrough(title, message string) *Error {
	return &Error{Category: Generic, Title: title, Message: message, Severity: SeverityError}
}

// Categories lists every member of the taxonomy.
func Categories() []Category {
	return []Category{
		Connectivity, InvalidRequest, Auth, Forbidden, NotFound, Unprocessable,
		RateLimited, Server, Unavailable, AIProcessing, Timeout, Session,
		SessionRequired, Generic, UnknownProcessing, Unknown, Unexpected,
		FileTooLarge, UnsupportedType, UploadFailed,
	}
}
