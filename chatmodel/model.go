package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

var (
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
)

// ContentProvider is implemented by tool results that can be
// rendered as content for the chat history.
type ContentProvider interface {
	// GetContent gets the content of the message for the chat history
	GetContent() string
}

// Content returns the content of the tool result for the chat history,
// the values that do not implement ContentProvider are JSON encoded.
func Content(v any) (string, error) {
	if c, ok := v.(ContentProvider); ok {
		return c.GetContent(), nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal content")
	}
	return string(bs), nil
}
