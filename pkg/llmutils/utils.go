package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/chatmodel"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// as LLM can reply like `Here you go: {json}`
func CleanJSON(bs []byte) []byte {
	trimmedPrefix := trimPrefixBeforeJSON(bs)
	trimmedJSON := trimPostfixAfterJSON(trimmedPrefix)
	return trimmedJSON
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	if startObject == -1 && startArray == -1 {
		return bs // No opening brace or bracket found, return the original string
	} else if startObject == -1 {
		start = startArray
	} else if startArray == -1 {
		start = startObject
	} else {
		start = min(startObject, startArray)
	}

	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	if endObject == -1 && endArray == -1 {
		return bs // No closing brace or bracket found, return the original string
	} else if endObject == -1 {
		end = endArray
	} else if endArray == -1 {
		end = endObject
	} else {
		end = max(endObject, endArray)
	}

	return bs[:end+1]
}

var backtick = []byte("```")

// BytesTrimBackticks removes ```json or ```
func BytesTrimBackticks(bs []byte) []byte {
	size := len(bs)
	startIndex := bytes.Index(bs, backtick)
	if startIndex == -1 {
		// If the start marker is not found, return the original string directly
		return bs
	}
	startIndex += len(backtick)

	for i := startIndex; i < size && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			startIndex = i + 1
			break
		}
	}

	// Calculate the string after removing the start marker and its preceding content
	contentAfterStart := bs[startIndex:]

	// Find the position of the last "```"
	endIndex := bytes.LastIndex(contentAfterStart, backtick)
	if endIndex == -1 {
		// If the end marker is not found, return the content after the start marker
		return contentAfterStart
	}

	// Extract the valid content in the middle
	result := contentAfterStart[:endIndex]

	return bytes.TrimSpace(result)
}

// stripComment removes the first <!--  --> comment from the LLM output
func stripComment(text string) string {
	// Remove the <!--
	before, after, ok := strings.Cut(text, "<!--")
	if ok {
		_, after2, ok := strings.Cut(after, "-->")
		if ok {
			if len(after2) > 1 && after2[0] == '\n' {
				after2 = after2[1:]
			}
			return before + after2
		}
	}
	// return as is
	return text
}

// RemoveAllComments removes all <!--  --> comments from the LLM output
func RemoveAllComments(input string) string {
	result := input
	for {
		// Keep removing comments until no more are found
		cleaned := stripComment(result)
		if cleaned == result {
			// No more comments found, we're done
			return cleaned
		}
		result = cleaned
	}
}

func AddComment(role, name, typ, content string) string {
	return fmt.Sprintf("<!-- @role=%s @name=%s @content=%s -->\n", role, name, typ) + content
}

// ToolErrorComment returns the tool error in the form that can be
// returned to the LLM as the tool result.
func ToolErrorComment(tool string, err error) string {
	return AddComment("tool", tool, "error", err.Error())
}

// UnmarshalInput parses the tool input produced by LLM into v.
// The input is cleaned from <!-- --> comments and any surrounding text,
// and parsed with the lenient parser if the strict one fails.
// Returns ErrFailedUnmarshalInput if the input cannot be parsed.
func UnmarshalInput(input string, v any) error {
	data := CleanJSON([]byte(RemoveAllComments(input)))
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		return errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	if err := ljson.Unmarshal(data, v); err != nil {
		return errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	return nil
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}

// EnsureEndsWithNewline ensures the message ends with a newline,
// it also removes any extra leading and trailing spaces.
func EnsureEndsWithNewline(s string) string {
	s = strings.TrimSpace(s)
	c := len(s)
	if c == 0 {
		return s
	}
	if s[c-1] != '\n' {
		return s + "\n"
	}
	return s
}
