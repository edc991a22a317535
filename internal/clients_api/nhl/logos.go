package nhl

import (
	"context"
	"fmt"
	"strings"

	"goalie-chart/internal/domain/teams"
)

// LogoURL is where the light SVG logo for code is published.
func (c *Client) LogoURL(code string) string {
	return strings.TrimRight(c.logoBaseURL, "/") + "/" + teams.LogoFileName(code, "svg")
}

// TeamLogo downloads the SVG logo for code.
func (c *Client) TeamLogo(ctx context.Context, code string) ([]byte, error) {
	body, err := c.Get(ctx, c.LogoURL(code), "image/svg+xml")
	if err != nil {
		return nil, fmt.Errorf("failed to download %s logo: %w", code, err)
	}
	return body, nil
}
