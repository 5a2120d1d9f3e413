package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsNutritionAPIRetries = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_nutrition_api_retries",
		Help:         "stats_nutrition_api_retries provides total retried requests to the nutrition API",
		RequiredTags: []string{"endpoint"},
	}

	StatsNutritionAPIFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_nutrition_api_failed",
		Help:         "stats_nutrition_api_failed provides total failed requests to the nutrition API",
		RequiredTags: []string{"endpoint"},
	}

	StatsNutritionTokenRefreshed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_nutrition_token_refreshed",
		Help:         "stats_nutrition_token_refreshed provides total access token refreshes",
		RequiredTags: []string{"source"},
	}

	StatsCacheHits = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_cache_hits",
		Help:         "stats_cache_hits provides total cache hits",
		RequiredTags: []string{"cache"},
	}

	StatsCacheMisses = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_cache_misses",
		Help:         "stats_cache_misses provides total cache misses",
		RequiredTags: []string{"cache"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfNutritionAPIRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_nutrition_api_request",
		Help:         "perf_nutrition_api_request provides duration of the nutrition API request",
		RequiredTags: []string{"endpoint"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfNutritionAPIRequest,
	&PerfToolCall,
	&StatsCacheHits,
	&StatsCacheMisses,
	&StatsNutritionAPIFailed,
	&StatsNutritionAPIRetries,
	&StatsNutritionTokenRefreshed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
