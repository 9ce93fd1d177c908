package auth

import (
	"strconv"
	"strings"
)

// SubjectResult is the outcome of looking for a user id in a token payload.
// Found is false when no recognized shape carried a usable id.
type SubjectResult struct {
	ID    string
	Found bool
}

// Found wraps a resolved id.
func Found(id string) SubjectResult { return SubjectResult{ID: id, Found: true} }

// NotFound is the empty result.
func NotFound() SubjectResult { return SubjectResult{} }

// ResolveSubject extracts the user id from a decoded payload. The accepted
// shapes are checked in order: id, _id, user.id, user._id.
func ResolveSubject(claims map[string]any) SubjectResult {
	if claims == nil {
		return NotFound()
	}
	if id, ok := idValue(claims["id"]); ok {
		return Found(id)
	}
	if id, ok := idValue(claims["_id"]); ok {
		return Found(id)
	}
	user, ok := claims["user"].(map[string]any)
	if !ok {
		return NotFound()
	}
	if id, ok := idValue(user["id"]); ok {
		return Found(id)
	}
	if id, ok := idValue(user["_id"]); ok {
		return Found(id)
	}
	return NotFound()
}

func idValue(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case int:
		return strconv.Itoa(id), true
	default:
		return "", false
	}
}
