// Package mcp exposes the weather lookup as a Model Context Protocol tool
// served over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	clierrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

const (
	serverName = "simpleweather"

	// ToolGetWeather is the name of the only tool the server advertises.
	ToolGetWeather = "get_weather"
)

// WeatherFunc renders the current weather for city in the given units.
type WeatherFunc func(ctx context.Context, city string, units weather.Units) (string, error)

// NewServer builds an MCP server with the get_weather tool backed by fn.
func NewServer(version string, fn WeatherFunc) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	tool := mcp.NewTool(ToolGetWeather,
		mcp.WithDescription("Current weather for a city as a bordered text table: condition, temperature, min. and max. temperature."),
		mcp.WithString("city",
			mcp.Required(),
			mcp.Description("City name, optionally qualified with a country code, e.g. \"Paris,FR\""),
		),
		mcp.WithString("units",
			mcp.Description("Temperature units (default metric)"),
			mcp.Enum(string(weather.Metric), string(weather.Imperial), string(weather.Standard)),
		),
	)
	s.AddTool(tool, getWeatherHandler(fn))
	return s
}

func getWeatherHandler(fn WeatherFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		city, err := req.RequireString("city")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		units, err := weather.ParseUnits(req.GetString("units", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := fn(ctx, city, units)
		if err != nil {
			slog.Debug("get_weather failed", "city", city, "error", err)
			return mcp.NewToolResultError(toolErrorText(err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// toolErrorText keeps the hint with the message; MCP clients show only text.
func toolErrorText(err error) string {
	if hint := clierrors.UserSuggestion(err); hint != "" {
		return fmt.Sprintf("%v\nHint: %s", err, hint)
	}
	return err.Error()
}

// ServeStdio runs s on the given streams until ctx is done or in closes.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}
