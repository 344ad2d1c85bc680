package model

// ReadonlyScope is the OAuth2 scope requested for the reporting API.
const ReadonlyScope = "https://www.googleapis.com/auth/analytics.readonly"

// DateDimension is the dimension parsed into the Output Table date column
// and used to order report requests.
const DateDimension = "ga:date"

// DefaultDimensions returns the dimensions requested for every property,
// in column order.
func DefaultDimensions() []string {
	return []string{
		"ga:date",
		"ga:source",
		"ga:medium",
	}
}

// DefaultMetrics returns the metric expressions requested for every
// property, in column order.
func DefaultMetrics() []string {
	return []string{
		"ga:sessions",
		"ga:newusers",
		"ga:pageviews",
		"ga:uniquePageviews",
		"ga:timeOnPage",
		"ga:bouncerate",
		"ga:avgSessionDuration",
		"ga:pageviewsPerSession",
	}
}
