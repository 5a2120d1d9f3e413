package nutritionai

import (
	"context"
	"reflect"

	"github.com/effective-security/nutritionai/tools"
)

const (
	// SpecName is the name of the Nutrition AI tool spec
	SpecName = "nutrition_ai"
	// ToolName is the name of the search function
	ToolName = "nutrition_ai_search"

	toolDescription = "Get highly-detailed nutrition information about a food item or a dish, including calories, macros and micros."
)

func init() {
	tools.RegisterSpecType(SpecName, reflect.TypeOf(NutritionAIToolSpec{}))
}

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" yaml:"query" validate:"required" jsonschema:"title=query,description=The food item or dish to search for."`
}

// NutritionAIToolSpec provides nutrition_ai_search function.
type NutritionAIToolSpec struct {
	tools.BaseSpec

	client *Client
}

// ensure NutritionAIToolSpec implements the BaseToolSpec interface
var _ tools.BaseToolSpec = (*NutritionAIToolSpec)(nil)

// New returns NutritionAIToolSpec.
func New(cfg *Config, opts ...Option) (*NutritionAIToolSpec, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client)
}

// NewWithClient returns NutritionAIToolSpec using the provided client.
func NewWithClient(client *Client) (*NutritionAIToolSpec, error) {
	s := &NutritionAIToolSpec{
		client: client,
	}
	search, err := tools.NewFunc(ToolName, toolDescription, s.search)
	if err != nil {
		return nil, err
	}
	if err = s.InitSpec(SpecName, search); err != nil {
		return nil, err
	}
	return s, nil
}

// NutritionAISearch returns the nutrition information for the query.
func (s *NutritionAIToolSpec) NutritionAISearch(ctx context.Context, query string) (*SearchResult, error) {
	return s.client.Search(ctx, query)
}

func (s *NutritionAIToolSpec) search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	return s.client.Search(ctx, req.Query)
}
