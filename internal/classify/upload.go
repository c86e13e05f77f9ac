package classify

import (
	"net/http"
	"strings"
)

var (
	sizeMarkers   = []string{"size", "large"}
	formatMarkers = []string{"format", "type", "unsupported"}
	uploadStack   = []string{"traceback", "exception:"}
)

// ClassifyUpload classifies a failure raised while uploading files. Size and
// format problems get their own categories; anything the general classifier
// cannot name ends as UploadFailed.
func ClassifyUpload(failure any) (result *Error) {
	defer func() {
		if r := recover(); r != nil {
			logf("recovered while classifying upload failure %T: %v", failure, r)
			result = New(UploadFailed)
		}
	}()

	s := detectShape(failure)
	logf("classifying upload failure (%T): %v", failure, failure)

	switch s.kind {
	case shapeStatus:
		if s.status.ResponseReceived() && s.status.HTTPStatus() == http.StatusRequestEntityTooLarge {
			return New(FileTooLarge)
		}
		return specificOrUploadFailed(classifyStatus(s.status))
	case shapeMessage, shapeString:
		if r, ok := uploadMessageRules(s.message); ok {
			return r
		}
		if s.kind == shapeString {
			return specificOrUploadFailed(classifyString(s.message))
		}
		return specificOrUploadFailed(classifyMessage(s.message))
	default:
		return New(UploadFailed)
	}
}

func uploadMessageRules(message string) (*Error, bool) {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, sizeMarkers):
		return New(FileTooLarge), true
	case containsAny(lower, formatMarkers):
		return New(UnsupportedType), true
	case message != "" && len(message) < maxUploadMessageLen && !containsAny(lower, uploadStack):
		return passthrough("Upload Failed", message), true
	}
	return nil, false
}

func specificOrUploadFailed(r *Error) *Error {
	switch r.Category {
	case Unknown, Unexpected, UnknownProcessing:
		return New(UploadFailed)
	}
	return r
}
