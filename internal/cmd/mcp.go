package cmd

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/simpleweather/internal/mcp"
	"github.com/salmonumbrella/simpleweather/internal/table"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the weather lookup as an MCP tool over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

The server advertises one tool, get_weather(city, units?), which returns
the same table 'simpleweather get' prints. The API key is resolved the
same way as for 'get'.

Example client configuration:
  {"command": "simpleweather", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := mcp.NewServer(cmd.Root().Version, mcpWeatherFunc(ctx))
			return mcp.ServeStdio(ctx, s, stdinFromContext(ctx), stdoutFromContext(ctx))
		},
	}
}

// mcpWeatherFunc looks up one city with the settings carried by base
// and renders the weather table as text.
func mcpWeatherFunc(base context.Context) mcp.WeatherFunc {
	return func(ctx context.Context, city string, units weather.Units) (string, error) {
		apiKey, err := resolveAPIKey(base)
		if err != nil {
			return "", err
		}
		var lang string
		if cfg := ConfigFromContext(base); cfg != nil {
			lang = cfg.Lang
		}

		list, err := fetchWeather(ctx, newWeatherClient(base, apiKey), []string{city}, &weather.Options{Lang: lang})
		if err != nil {
			return "", err
		}

		var buf bytes.Buffer
		if err := table.Render(&buf, weatherTable(list, units).Grid()); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}
