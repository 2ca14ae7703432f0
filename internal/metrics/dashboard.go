package metrics

import (
	"fmt"
	"net/url"
)

// EmbedURL converts a regular Grafana dashboard URL into one suitable for
// frame embedding by forcing the light theme and TV kiosk mode. The
// remote Grafana must be configured to permit embedding.
func EmbedURL(dashboardURL string) (string, error) {
	if dashboardURL == "" {
		return "", fmt.Errorf("dashboard URL is required")
	}
	parsed, err := url.Parse(dashboardURL)
	if err != nil {
		return "", fmt.Errorf("invalid dashboard URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("dashboard URL must be http or https")
	}

	params := parsed.Query()
	params.Set("theme", "light")
	params.Set("kiosk", "tv")
	parsed.RawQuery = params.Encode()
	return parsed.String(), nil
}
