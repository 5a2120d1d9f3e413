package llmutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CleanJSON(t *testing.T) {
	llmOutput := "\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"
	clean := llmutils.CleanJSON([]byte(llmOutput))

	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"
	assert.Equal(t, expected, string(clean))

	llmOutput = "Here you go:\n```json\n\n[{\"city\": \"Paris\", \"country\": \"France\"}]\n```\n\n"
	clean = llmutils.CleanJSON([]byte(llmOutput))

	expected = "[{\"city\": \"Paris\", \"country\": \"France\"}]"
	assert.Equal(t, expected, string(clean))

	resp := "{\n\t\"answer\": \"Here is the search query used to find the top 5 assets under attack:\\n\\n```json\\n{\\n  \\\"queryId\\\": \\\"Asset\\\",\\n  \\\"filterQuery\\\": {\\n    \\\"term\\\": {\\n      \\\"asset.OnAttack\\\": true\\n    }\\n  },\\n  \\\"sort\\\": \\\"asset.AttackCount DESC\\\",\\n  \\\"limit\\\": 5\\n}\\n```\",\n\t\"chatTitle\": \"Top 5 Assets Under Attack\",\n\t\"actions\": []\n}"
	assert.Equal(t, resp, string(llmutils.CleanJSON([]byte(resp))))
}

func Test_BytesTrimBackticks(t *testing.T) {
	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"

	assert.Equal(t, expected, string(llmutils.BytesTrimBackticks([]byte("\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))))
	// the same
	assert.Equal(t, expected, string(llmutils.BytesTrimBackticks([]byte(expected))))
	assert.Equal(t, expected, string(llmutils.BytesTrimBackticks([]byte("\n```\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))))
	assert.Equal(t, expected, string(llmutils.BytesTrimBackticks([]byte("\n```{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))))
}

func Test_BackticksJSON(t *testing.T) {
	json := "{\"city\": \"Paris\", \"country\": \"France\"}"
	wrapped := llmutils.BackticksJSON(json)

	expected := "\n```json\n{\"city\": \"Paris\", \"country\": \"France\"}\n```\n"
	assert.Equal(t, expected, wrapped)
}

func Test_RemoveAllComments(t *testing.T) {
	llmOutput := `Text
<!-- This is a comment
This is another comment -->
Some text
`
	expected := `Text
Some text
`
	assert.Equal(t, expected, llmutils.RemoveAllComments(llmOutput))

	llmOutput = `Text
<!-- @type=tool @name=tool1 @content=clarification -->
Some text
<!-- @type=assistant @name=agent2 @content=clarification -->
I need more information about the tool
<!-- @type=tool @name=tool1 @content=error -->
I need more information about the tool
`
	expected = `Text
Some text
I need more information about the tool
I need more information about the tool
`
	assert.Equal(t, expected, llmutils.RemoveAllComments(llmOutput))

	// unterminated comment is kept
	assert.Equal(t, "a <!-- b", llmutils.RemoveAllComments("a <!-- b"))
}

func Test_AddComment(t *testing.T) {
	exp := `<!-- @role=tool @name=tool1 @content=clarification -->
I need more information about the tool
`
	assert.Equal(t, exp, llmutils.AddComment("tool", "tool1", "clarification", "I need more information about the tool\n"))
}

func Test_EnsureNewline(t *testing.T) {
	assert.Equal(t, "", llmutils.EnsureEndsWithNewline(" \n"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline(" \nHello"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline("\nHello\n"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline("Hello\n\n"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline("Hello\n\n\n"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline("Hello\n\n\n\n"))
	assert.Equal(t, "Hello\n", llmutils.EnsureEndsWithNewline("Hello\n\n\n\n\n"))
}

func Test_ToJSON(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	p := Person{Name: "John", Age: 30}
	expected := `{"name":"John","age":30}`
	assert.Equal(t, expected, llmutils.ToJSON(p))
}

func Test_ToJSONIndent(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	p := Person{Name: "John", Age: 30}
	expected := "{\n\t\"name\": \"John\",\n\t\"age\": 30\n}"
	assert.Equal(t, expected, llmutils.ToJSONIndent(p))
}

func Test_ToolErrorComment(t *testing.T) {
	exp := "<!-- @role=tool @name=search @content=error -->\nquota exceeded"
	assert.Equal(t, exp, llmutils.ToolErrorComment("search", errors.New("quota exceeded")))
}

type query struct {
	Query string `json:"Query"`
	Limit int    `json:"Limit,omitempty"`
}

func Test_UnmarshalInput(t *testing.T) {
	var q query
	require.NoError(t, llmutils.UnmarshalInput(`{"Query":"banana"}`, &q))
	assert.Equal(t, "banana", q.Query)

	q = query{}
	require.NoError(t, llmutils.UnmarshalInput("Sure, here you go:\n```json\n{\"Query\": \"apple pie\", \"Limit\": 2}\n```", &q))
	assert.Equal(t, "apple pie", q.Query)
	assert.Equal(t, 2, q.Limit)

	for _, input := range []string{"plain string", ""} {
		err := llmutils.UnmarshalInput(input, &q)
		assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput), "input %q", input)
	}

	// the comments echoed by LLM are ignored
	q = query{}
	require.NoError(t, llmutils.UnmarshalInput("<!-- @role=tool @name=search @content=error -->\n{\"Query\": \"kiwi\"}", &q))
	assert.Equal(t, "kiwi", q.Query)
}
