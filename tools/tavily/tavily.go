// Package tavily provides the web search tool spec backed by the Tavily API.
package tavily

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "tavily")

const (
	// SpecName is the name of the web search tool spec
	SpecName = "web_search"
	// ToolName is the name of the search function
	ToolName = "WebSearch"
	// EnvAPIKey is the environment variable with the Tavily API key
	EnvAPIKey = "TAVILY_API_KEY"
)

func init() {
	tools.RegisterSpecType(SpecName, reflect.TypeOf(WebSearchToolSpec{}))
}

// Config provides the configuration of the web search tool spec.
type Config struct {
	// APIKey is the Tavily API key,
	// if not provided, TAVILY_API_KEY environment variable is used.
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	// SearchDepth is basic or advanced
	SearchDepth string `json:"search_depth,omitempty" yaml:"search_depth,omitempty" validate:"omitempty,oneof=basic advanced"`
}

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"Query" yaml:"Query" validate:"required" jsonschema:"title=Search Query,description=The query to search web."`
}

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results" yaml:"results" jsonschema:"title=results,description=The results from a web search."`
	Answer  string                      `json:"answer,omitempty" yaml:"answer,omitempty" jsonschema:"title=answer,description=The aggregated answer from a web search."`
}

// GetContent returns the content for the chat history
func (r *SearchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}

// WebSearchToolSpec provides WebSearch function
type WebSearchToolSpec struct {
	tools.BaseSpec

	cfg        Config
	httpClient *http.Client
}

// ensure WebSearchToolSpec implements the BaseToolSpec interface
var _ tools.BaseToolSpec = (*WebSearchToolSpec)(nil)

// New returns WebSearchToolSpec
func New(cfg *Config) (*WebSearchToolSpec, error) {
	s := &WebSearchToolSpec{
		httpClient: http.DefaultClient,
	}
	if cfg != nil {
		s.cfg = *cfg
	}
	s.cfg.APIKey = values.StringsCoalesce(s.cfg.APIKey, os.Getenv(EnvAPIKey))
	if s.cfg.APIKey == "" {
		return nil, errors.Errorf("%s is not set", EnvAPIKey)
	}
	s.cfg.SearchDepth = values.StringsCoalesce(s.cfg.SearchDepth, "basic")

	search, err := tools.NewFunc(ToolName, "A tool that provides a web search functionality.", s.search)
	if err != nil {
		return nil, err
	}
	if err = s.InitSpec(SpecName, search); err != nil {
		return nil, err
	}
	return s, nil
}

// WithBaseURL overrides the Tavily API endpoint
func (s *WebSearchToolSpec) WithBaseURL(baseURL string) *WebSearchToolSpec {
	s.cfg.BaseURL = baseURL
	return s
}

// WithHTTPClient sets the HTTP client
func (s *WebSearchToolSpec) WithHTTPClient(client *http.Client) *WebSearchToolSpec {
	s.httpClient = client
	return s
}

// WebSearch performs the search
func (s *WebSearchToolSpec) WebSearch(ctx context.Context, query string) (*SearchResult, error) {
	return s.search(ctx, &SearchRequest{Query: query})
}

func (s *WebSearchToolSpec) search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	client := tavilygo.NewClient(s.cfg.APIKey)
	if s.cfg.BaseURL != "" {
		client.BaseURL = s.cfg.BaseURL
	}
	if s.httpClient != nil {
		client.HTTPClient = s.httpClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   s.cfg.SearchDepth,
		IncludeAnswer: true,
	}

	searchResp, err := tavilygo.Search(client, searchReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"reason", "search",
		"query", req.Query,
		"results", len(searchResp.Results))

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}
