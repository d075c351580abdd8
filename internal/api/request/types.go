package request

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest display name accepted
const MaxNameLength = 32

// JoinParams are the query parameters of the WebSocket endpoint
type JoinParams struct {
	Name string
}

// ParseJoinParams reads and validates the join parameters of r
func ParseJoinParams(r *http.Request) (JoinParams, error) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		return JoinParams{}, errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return JoinParams{}, errors.New("name is too long")
	}
	return JoinParams{Name: name}, nil
}
