package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Portion struct {
	Name     string  `json:"name" jsonschema:"description=Portion name"`
	Quantity float64 `json:"quantity,omitempty" jsonschema:"description=Portion quantity"`
}

type Food struct {
	Name     string  `json:"name" validate:"required" jsonschema:"description=Food name"`
	Calories float64 `json:"calories,omitempty" jsonschema:"description=Calories per portion"`
	Portion  Portion `json:"portion" jsonschema:"description=Serving portion"`
}

func TestJson(t *testing.T) {
	enc, err := NewEncoder(Food{})
	require.NoError(t, err)
	exp := `
The output is JSON in the following JSON schema:
` + "```json" + `
{
	"properties": {
		"name": {
			"type": "string",
			"description": "Food name"
		},
		"calories": {
			"type": "number",
			"description": "Calories per portion"
		},
		"portion": {
			"properties": {
				"name": {
					"type": "string",
					"description": "Portion name"
				},
				"quantity": {
					"type": "number",
					"description": "Portion quantity"
				}
			},
			"type": "object",
			"required": [
				"name"
			],
			"description": "Serving portion"
		}
	},
	"type": "object",
	"required": [
		"name",
		"portion"
	]
}
` + "```\n"
	assert.Equal(t, exp, enc.GetFormatInstructions())
	assert.NotNil(t, enc.Schema())
}

func TestJson_Unmarshal(t *testing.T) {
	enc, err := NewEncoder(Food{})
	require.NoError(t, err)

	var f Food
	err = enc.Unmarshal([]byte("Here is the result:\n```json\n{\"name\": \"apple\", \"calories\": 52}\n```"), &f)
	require.NoError(t, err)
	assert.Equal(t, "apple", f.Name)
	assert.Equal(t, 52.0, f.Calories)

	bs, err := enc.Marshal(&f)
	require.NoError(t, err)
	assert.Contains(t, string(bs), "\"name\": \"apple\"")

	assert.Error(t, enc.Validate(&Food{}))
	assert.NoError(t, enc.Validate(&f))
}
