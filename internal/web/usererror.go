package web

// usererror.go maps technical errors onto messages a user can act on.
//
// Every message carries a code that support staff can look up here:
//
//	LOAD001  too many loads in progress      wait and retry
//	LOAD002  load not found                  results expire; load the file again
//	LOAD003  request cancelled               retry
//	LOAD004  load timed out                  split the file or retry later
//	SCH001   unknown schema                  pick a schema from /api/sheets
//	SCH002   schema improperly configured    server-side bug, check the logs
//	FILE001  file too large                  split the file
//	FILE002  unsupported file format         upload .xlsx, .xlsm or .csv
//	FILE003  empty file                      upload a file with data
//	FILE004  no file provided                attach the file as "file"
//	FILE005  unreadable spreadsheet          re-save the workbook
//	REQ001   invalid extra data              send a JSON object
//	REQ002   invalid load ID                 use the ID returned by the load
//	DB001    database unreachable            retry in a few moments
//	DB002    database connection interrupted retry
//	DB003    database busy                   retry
//	RATE001  rate limited                    slow down
//	ERR000   anything else                   check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage is an error explained for the person who caused it.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Load lifecycle
	{"too many loads", UserMessage{"The server is busy with other loads", "Please wait a moment and try again", "LOAD001"}},
	{"load not found", UserMessage{"This load result is not available", "Results expire after a while. Load the file again", "LOAD002"}},
	{"context canceled", UserMessage{"The request was cancelled", "Please try again", "LOAD003"}},
	{"context deadline exceeded", UserMessage{"The load took too long", "Split the file or try again later", "LOAD004"}},

	// Schemas
	{"unknown schema", UserMessage{"There is no schema with this name", "Pick one of the schemas listed at /api/sheets", "SCH001"}},
	{"improperly configured", UserMessage{"This schema is not set up correctly", "Please contact support", "SCH002"}},

	// Files
	{"file too large", UserMessage{"The file exceeds the size limit", "Split the file into smaller parts", "FILE001"}},
	{"request body too large", UserMessage{"The file exceeds the size limit", "Split the file into smaller parts", "FILE001"}},
	{"unsupported file format", UserMessage{"This file type is not supported", "Upload an .xlsx, .xlsm or .csv file", "FILE002"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Upload a file that contains data", "FILE003"}},
	{"no such file", UserMessage{"No file was attached", "Attach the document in the \"file\" field", "FILE004"}},
	{"not a valid zip file", UserMessage{"The spreadsheet could not be read", "Open and re-save the workbook, then try again", "FILE005"}},
	{"open document", UserMessage{"The spreadsheet could not be read", "Open and re-save the workbook, then try again", "FILE005"}},

	// Request parameters
	{"invalid extra data", UserMessage{"The extra data is not valid", "Send extra data as a JSON object", "REQ001"}},
	{"invalid load id", UserMessage{"The load ID is not valid", "Use the ID returned when the file was loaded", "REQ002"}},

	// Database
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB001"}},
	{"connection reset", UserMessage{"The database connection was interrupted", "Please try again", "DB002"}},
	{"deadlock", UserMessage{"The database was busy", "Please try again", "DB003"}},

	// Throttling
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the user message for err, or ERR000 when nothing
// matches. A nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	s := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(s, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }
