package classify

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// StatusError is implemented by transport failures. A failure without a
// response (dial error, reset connection) reports ResponseReceived false.
type StatusError interface {
	error
	ResponseReceived() bool
	HTTPStatus() int
	ResponseBody() []byte
}

const (
	maxBackendMessageLen = 300
	maxSafeMessageLen    = 150
	maxUploadMessageLen  = 200
)

var statusCategories = map[int]Category{
	400: InvalidRequest,
	401: Auth,
	403: Forbidden,
	404: NotFound,
	422: Unprocessable,
	429: RateLimited,
	500: Server,
	502: Unavailable,
	503: Unavailable,
	504: Unavailable,
}

// backendDenyList marks backend bodies that leak internal tooling.
var backendDenyList = []string{
	"traceback",
	"exception",
	"chatprompttemplate",
	"langchain",
	"variables",
	"expected:",
	"received:",
	"troubleshooting",
}

// stackMarkers disqualify a message from being shown verbatim.
var stackMarkers = []string{
	"traceback",
	"exception:",
	"error:",
	"failed to synthesize",
}

type messageRule struct {
	category Category
	anyOf    []string
	text     *canned
}

var (
	// apiKeyText replaces the HTTP 401 text for auth problems named in a message.
	apiKeyText = &canned{
		"API Key Error",
		"There seems to be an authentication issue. Please check the API configuration.",
		SeverityError,
	}
	stringAIText = &canned{
		"AI Processing Error",
		"The AI assistant encountered a processing error. Please try rephrasing your query.",
		SeverityError,
	}
)

// messageRules are evaluated in order against a lowercased error message.
var messageRules = []messageRule{
	{AIProcessing, []string{"chatprompttemplate", "langchain", "variables", "expected:", "received:"}, nil},
	{Auth, []string{"api key", "authentication failed"}, apiKeyText},
	{Timeout, []string{"timeout", "timed out", "exceeded deadline", "deadline exceeded"}, nil},
}

var stringAIMarkers = []string{"chatprompttemplate", "langchain", "variables", "failed to synthesize"}

type shapeKind int

const (
	shapeStatus shapeKind = iota
	shapeMessage
	shapeString
	shapeOther
)

// shape is the internal variant a failure is reduced to before any rule runs.
type shape struct {
	kind     shapeKind
	status   StatusError
	message  string
	original any
}

func detectShape(failure any) shape {
	switch v := failure.(type) {
	case nil:
		return shape{kind: shapeOther}
	case error:
		if isNilPointer(v) {
			return shape{kind: shapeOther, original: failure}
		}
		var se StatusError
		if errors.As(v, &se) {
			return shape{kind: shapeStatus, status: se, message: v.Error(), original: failure}
		}
		return shape{kind: shapeMessage, message: v.Error(), original: failure}
	case string:
		return shape{kind: shapeString, message: v, original: failure}
	default:
		return shape{kind: shapeOther, original: failure}
	}
}

// isNilPointer catches typed nils, e.g. a nil *transport.Error stored in an error.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Classify maps any failure value to a classified error. It never returns nil
// and never panics.
func Classify(failure any) (result *Error) {
	defer func() {
		if r := recover(); r != nil {
			logf("recovered while classifying %T: %v", failure, r)
			result = New(Unexpected)
		}
	}()

	s := detectShape(failure)
	logf("classifying failure (%T): %v", failure, failure)

	switch s.kind {
	case shapeStatus:
		return classifyStatus(s.status)
	case shapeMessage:
		return classifyMessage(s.message)
	case shapeString:
		return classifyString(s.message)
	default:
		logf("unhandled failure type %T", failure)
		return New(Unexpected)
	}
}

func classifyStatus(se StatusError) *Error {
	if !se.ResponseReceived() {
		return New(Connectivity)
	}

	category, ok := statusCategories[se.HTTPStatus()]
	if !ok {
		category = Server
	}
	result := New(category)
	if category == Server && se.HTTPStatus() != 500 {
		result.Message = "An unexpected server error occurred. Please try again."
	}
	result.Detail = BackendMessage(se.ResponseBody())
	if result.Detail != "" {
		logf("backend message for status %d: %s", se.HTTPStatus(), result.Detail)
	}
	return result
}

func classifyMessage(message string) *Error {
	lower := strings.ToLower(message)

	for _, rule := range messageRules {
		if containsAny(lower, rule.anyOf) {
			if rule.text != nil {
				return withText(rule.category, *rule.text)
			}
			return New(rule.category)
		}
	}

	if strings.Contains(lower, "file") && (strings.Contains(lower, "upload") || strings.Contains(lower, "process")) {
		if r, ok := uploadMessageRules(message); ok {
			return r
		}
		return New(UploadFailed)
	}

	if strings.Contains(lower, "session") {
		return New(Session)
	}

	if isUserSafe(message, maxSafeMessageLen) {
		return passthrough("Request Failed", message)
	}
	return New(UnknownProcessing)
}

func classifyString(message string) *Error {
	lower := strings.ToLower(message)
	if containsAny(lower, stringAIMarkers) {
		return withText(AIProcessing, *stringAIText)
	}
	if isUserSafe(message, maxSafeMessageLen) {
		return passthrough("Error", message)
	}
	return New(Unknown)
}

// BackendMessage extracts a human message from a response body, checking a
// "detail" field, then a "message" field, then the raw body as text. It
// returns "" when nothing usable is found or the text fails sanitization.
func BackendMessage(body []byte) string {
	text := extractBackendMessage(body)
	if text == "" || len(text) > maxBackendMessageLen {
		return ""
	}
	if containsAny(strings.ToLower(text), backendDenyList) {
		return ""
	}
	return text
}

func extractBackendMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return trimmed
	}

	switch v := decoded.(type) {
	case map[string]any:
		if detail, ok := v["detail"].(string); ok {
			return detail
		}
		if msg, ok := v["message"].(string); ok {
			return msg
		}
		return ""
	case string:
		return v
	default:
		return ""
	}
}

func isUserSafe(message string, limit int) bool {
	if len(message) == 0 || len(message) >= limit {
		return false
	}
	return !containsAny(strings.ToLower(message), stackMarkers)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
