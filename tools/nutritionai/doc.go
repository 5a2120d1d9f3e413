// Package nutritionai provides the tool spec for the Passio Nutrition AI API.
//
// NutritionAIToolSpec exposes the `nutrition_ai_search` function, which returns
// detailed nutrition information about a food item or a dish, including calories,
// macros and micros. The API access token is exchanged for the subscription key
// and refreshed before it expires.
package nutritionai
