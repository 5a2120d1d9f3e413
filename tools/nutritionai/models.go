package nutritionai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/effective-security/nutritionai/pkg/llmutils"
)

// Token is the access token returned by the token exchange endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in"`
	CustomerID  string `json:"customer_id"`
	Scope       string `json:"scope,omitempty"`

	// ExpiresAt is computed at the time the token is received,
	// it includes the refresh skew.
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid returns true if the token is not expired at the given time.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// Headers returns the authorization headers for the API requests.
func (t *Token) Headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+t.AccessToken)
	h.Set("Passio-ID", t.CustomerID)
	return h
}

// Weight of a portion.
type Weight struct {
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Portion describes the serving size the nutrition values are given for.
type Portion struct {
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Quantity float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Weight   *Weight `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// NutritionPreview provides calories and macros for the portion,
// the values not returned by the API are nil.
type NutritionPreview struct {
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty" yaml:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty" yaml:"fat,omitempty"`
	Protein  *float64 `json:"protein,omitempty" yaml:"protein,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Portion  *Portion `json:"portion,omitempty" yaml:"portion,omitempty"`
}

// FoodResult is a single food item found by the search.
type FoodResult struct {
	DisplayName      string            `json:"displayName" yaml:"displayName"`
	ShortName        string            `json:"shortName,omitempty" yaml:"shortName,omitempty"`
	LongName         string            `json:"longName,omitempty" yaml:"longName,omitempty"`
	ScoredName       string            `json:"scoredName,omitempty" yaml:"scoredName,omitempty"`
	Score            float64           `json:"score,omitempty" yaml:"score,omitempty"`
	BrandName        string            `json:"brandName,omitempty" yaml:"brandName,omitempty"`
	Type             string            `json:"type,omitempty" yaml:"type,omitempty"`
	ResultID         string            `json:"resultId,omitempty" yaml:"resultId,omitempty"`
	IconID           string            `json:"iconId,omitempty" yaml:"iconId,omitempty"`
	LabelID          string            `json:"labelId,omitempty" yaml:"labelId,omitempty"`
	SynonymID        string            `json:"synonymId,omitempty" yaml:"synonymId,omitempty"`
	RefCode          string            `json:"refCode,omitempty" yaml:"refCode,omitempty"`
	IngredientsCount int               `json:"ingredientsCount,omitempty" yaml:"ingredientsCount,omitempty"`
	Tags             []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	NutritionPreview *NutritionPreview `json:"nutritionPreview,omitempty" yaml:"nutritionPreview,omitempty"`
}

// SearchResult is the response of the advanced food search.
// The typed fields are a view of the response,
// the JSON encoding of a decoded result is the response body as returned by the API,
// including the fields not modelled here.
type SearchResult struct {
	Results        []FoodResult `json:"results" yaml:"results"`
	AlternateNames []string     `json:"alternateNames,omitempty" yaml:"alternateNames,omitempty"`

	raw json.RawMessage
}

// searchResult has no methods, to avoid recursion in the JSON codec
type searchResult SearchResult

// UnmarshalJSON decodes the typed view and keeps the compacted body.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var v searchResult
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*r = SearchResult(v)
	r.raw = buf.Bytes()
	return nil
}

// MarshalJSON returns the original body if the result was decoded from JSON.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(searchResult(r))
}

// Fake returns an example of the search result.
func (SearchResult) Fake() any {
	return &SearchResult{
		Results: []FoodResult{
			{
				DisplayName: "Apple",
				ShortName:   "apple",
				Type:        "synonym",
				ResultID:    "1603211196865",
				NutritionPreview: &NutritionPreview{
					Calories: valuePtr(52),
					Carbs:    valuePtr(13.81),
					Fat:      valuePtr(0.17),
					Protein:  valuePtr(0.26),
					Fiber:    valuePtr(2.4),
					Portion: &Portion{
						Name:     "medium",
						Quantity: 1,
						Weight:   &Weight{Unit: "g", Value: 182},
					},
				},
			},
		},
		AlternateNames: []string{"red apple", "green apple"},
	}
}

func valuePtr(v float64) *float64 {
	return &v
}

// Raw returns the response body, or nil if the result was not decoded from JSON.
func (r *SearchResult) Raw() json.RawMessage {
	return r.raw
}

// GetContent returns the content for the chat history
func (r *SearchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if len(r.Results) == 0 {
		buf.WriteString("NO RESULTS\n")
	}
	for _, res := range r.Results {
		fmt.Fprintf(&buf, "- NAME: %s\n", res.DisplayName)
		if res.BrandName != "" {
			fmt.Fprintf(&buf, "  BRAND: %s\n", res.BrandName)
		}
		if p := res.NutritionPreview; p != nil {
			if p.Portion != nil {
				fmt.Fprintf(&buf, "  PORTION: %s\n", p.Portion.String())
			}
			printValue(&buf, "CALORIES", p.Calories)
			printValue(&buf, "CARBS", p.Carbs)
			printValue(&buf, "FAT", p.Fat)
			printValue(&buf, "PROTEIN", p.Protein)
			printValue(&buf, "FIBER", p.Fiber)
		}
	}
	if len(r.AlternateNames) > 0 {
		fmt.Fprintf(&buf, "ALTERNATE NAMES: %s\n", strings.Join(r.AlternateNames, ", "))
	}
	return buf.String()
}

func printValue(buf *bytes.Buffer, name string, val *float64) {
	if val != nil {
		fmt.Fprintf(buf, "  %s: %.2f\n", name, *val)
	}
}

func (p *Portion) String() string {
	s := fmt.Sprintf("%g %s", p.Quantity, p.Name)
	if p.Weight != nil && p.Weight.Value > 0 {
		s += fmt.Sprintf(" (%g%s)", p.Weight.Value, p.Weight.Unit)
	}
	return s
}
