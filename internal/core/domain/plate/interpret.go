package plate

import (
	"fmt"
	"strings"
)

// Fixed caller-facing messages. Upstream text is only passed through where a
// rule says so.
const (
	MessageAvailable          = "This plate is available and can be requested."
	MessageTaken              = "This plate is not available."
	MessageInvalid            = "This plate is not valid."
	MessageGlobal             = "The plate registry reported an error. Please try again later."
	MessageServiceUnavailable = "The plate registry is temporarily unavailable. Please try again later."
	MessageUnexpected         = "Received an unexpected response from the plate registry."
	MessageUninterpretable    = "Could not interpret the response from the plate registry."
)

const messageKeyPrefix = "message."

var messageVocabulary = map[string]Result{
	"message.available":    {Status: StatusAvailable, Message: MessageAvailable},
	"message.notavailable": {Status: StatusTaken, Message: MessageTaken},
	"message.taken":        {Status: StatusTaken, Message: MessageTaken},
	"message.invalid":      {Status: StatusInvalid, Message: MessageInvalid},
	"message.global":       {Status: StatusUnavailable, Message: MessageGlobal},
}

var (
	takenPhrases     = []string{"not available", "already in use", "unavailable"}
	availablePhrases = []string{"can be requested", "available"}
)

// Interpret maps an upstream payload and HTTP status to exactly one Result.
// It accepts whatever the upstream sent: nil, text, a decoded JSON object or
// any other JSON value.
func Interpret(payload any, httpStatus int) Result {
	r, _ := Explain(payload, httpStatus)
	return r
}

// Explain is Interpret that also names the decision that produced the result,
// for diagnostics.
func Explain(payload any, httpStatus int) (Result, string) {
	if httpStatus >= 500 {
		return Result{Status: StatusUnavailable, Message: MessageServiceUnavailable}, "upstream-5xx"
	}
	switch p := payload.(type) {
	case nil:
		return Result{Status: StatusUnavailable, Message: MessageUnexpected}, "empty-payload"
	case string:
		return interpretText(p)
	case []byte:
		return interpretText(string(p))
	case map[string]any:
		return interpretObject(newObjectSignals(p))
	default:
		return uninterpretable(), "unsupported-shape"
	}
}

// Negative phrases are matched first: each of them also contains "available".
func interpretText(text string) (Result, string) {
	lower := strings.ToLower(text)
	if containsAny(lower, takenPhrases) {
		return Result{Status: StatusTaken, Message: MessageTaken}, "text-taken"
	}
	if containsAny(lower, availablePhrases) {
		return Result{Status: StatusAvailable, Message: MessageAvailable}, "text-available"
	}
	return uninterpretable(), "text-unrecognized"
}

// objectSignals is everything the rule table looks at in a structured payload.
type objectSignals struct {
	code       string
	message    string
	messageKey string
	success    *bool
	available  *bool
	isValid    *bool
}

func newObjectSignals(obj map[string]any) objectSignals {
	s := objectSignals{
		code:      strings.ToUpper(firstScalar(obj, "code", "status", "result")),
		message:   firstString(obj, "message", "errorMessage", "statusMessage"),
		success:   boolField(obj, "success"),
		available: boolField(obj, "available"),
		isValid:   boolField(obj, "isValid"),
	}
	s.messageKey = strings.ToLower(strings.TrimSpace(s.message))
	return s
}

func (s objectSignals) codeIn(codes ...string) bool {
	for _, c := range codes {
		if s.code == c {
			return true
		}
	}
	return false
}

func (s objectSignals) messageOr(fallback string) string {
	if strings.TrimSpace(s.message) != "" {
		return s.message
	}
	return fallback
}

// objectRule returns a result and true when it applies.
type objectRule struct {
	name  string
	apply func(s objectSignals) (Result, bool)
}

// objectRules is ordered: the first rule that applies wins. Explicit message
// keys beat flags, flags and codes beat free text.
var objectRules = []objectRule{
	{name: "message-key", apply: func(s objectSignals) (Result, bool) {
		r, ok := messageVocabulary[s.messageKey]
		return r, ok
	}},
	{name: "success-available", apply: func(s objectSignals) (Result, bool) {
		if isTrue(s.success) && s.code == "AVAILABLE" {
			return Result{Status: StatusAvailable, Message: MessageAvailable}, true
		}
		return Result{}, false
	}},
	{name: "available", apply: func(s objectSignals) (Result, bool) {
		if isTrue(s.available) || s.codeIn("AVAILABLE", "SUCCESS") {
			return Result{Status: StatusAvailable, Message: s.messageOr(MessageAvailable)}, true
		}
		return Result{}, false
	}},
	{name: "invalid", apply: func(s objectSignals) (Result, bool) {
		if s.codeIn("VALIDATION", "INVALID") || isFalse(s.isValid) {
			return Result{Status: StatusInvalid, Message: MessageInvalid}, true
		}
		return Result{}, false
	}},
	{name: "taken", apply: func(s objectSignals) (Result, bool) {
		if s.codeIn("TAKEN", "UNAVAILABLE", "NOT_AVAILABLE") || isFalse(s.available) {
			return Result{Status: StatusTaken, Message: MessageTaken}, true
		}
		return Result{}, false
	}},
	// Any other human-readable message is read as a rejection reason.
	{name: "free-text-rejection", apply: func(s objectSignals) (Result, bool) {
		if s.messageKey != "" && !strings.HasPrefix(s.messageKey, messageKeyPrefix) {
			return Result{Status: StatusTaken, Message: s.message}, true
		}
		return Result{}, false
	}},
}

func interpretObject(s objectSignals) (Result, string) {
	for _, rule := range objectRules {
		if r, ok := rule.apply(s); ok {
			return r, rule.name
		}
	}
	return uninterpretable(), "object-unrecognized"
}

func uninterpretable() Result {
	return Result{Status: StatusUnavailable, Message: MessageUninterpretable}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstScalar returns the first field among keys holding a non-empty scalar,
// rendered as text.
func firstScalar(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64, int, int64:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func boolField(obj map[string]any, key string) *bool {
	if v, ok := obj[key].(bool); ok {
		return &v
	}
	return nil
}

func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }
