package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

// Column captions of the weather table.
var weatherHeaders = []string{"City", "Condition", "Temperature", "Min. temp.", "Max. temp."}

func newWeatherCmd() *cobra.Command {
	var (
		unitsFlag string
		langFlag  string
	)

	cmd := &cobra.Command{
		Use:     "get <city> [city...]",
		Aliases: []string{"weather"},
		Short:   "Show the current weather for one or more cities",
		Long: `Fetch the current weather for each city, in the order given, and print
one table row per city.

Cities may be qualified with a country code ("Paris,FR"). Structured
output (-o json|ndjson|yaml) prints one record per city instead.

Examples:
  simpleweather get London
  simpleweather get "New York" Tokyo --units imperial
  simpleweather get Berlin -o json -q '.[0].temperature'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)

			units, err := resolveUnits(cmd, cfg, unitsFlag)
			if err != nil {
				return err
			}
			lang := strings.TrimSpace(langFlag)
			if !cmd.Flags().Changed("lang") && cfg != nil {
				lang = cfg.Lang
			}

			apiKey, err := resolveAPIKey(ctx)
			if err != nil {
				return err
			}
			client := newWeatherClient(ctx, apiKey)

			list, err := fetchWeather(ctx, client, args, &weather.Options{Lang: lang})
			if err != nil {
				return err
			}

			printer := printerForContext(ctx)
			if printer.Format().Structured() || output.Transformed(ctx) {
				readings := make([]weather.Reading, 0, len(list))
				for _, cw := range list {
					readings = append(readings, cw.Reading(units))
				}
				return printer.Print(ctx, readings)
			}
			return printer.Print(ctx, weatherTable(list, units))
		},
	}

	cmd.Flags().StringVarP(&unitsFlag, "units", "u", "", "Temperature units: metric|imperial|standard (default from config, then metric)")
	cmd.Flags().StringVar(&langFlag, "lang", "", "Language for condition descriptions (e.g. en, de, fr)")
	return cmd
}

func resolveUnits(cmd *cobra.Command, cfg *config.Config, flag string) (weather.Units, error) {
	value := flag
	if !cmd.Flags().Changed("units") && cfg != nil {
		value = cfg.Units
	}
	units, err := weather.ParseUnits(value)
	if err != nil {
		return "", errors.NewUserError(err.Error(), "Use one of: metric, imperial, standard")
	}
	return units, nil
}

// fetchWeather queries each city in order and stops at the first failure.
func fetchWeather(ctx context.Context, client *weather.Client, cities []string, opts *weather.Options) ([]*weather.CityWeather, error) {
	list := make([]*weather.CityWeather, 0, len(cities))
	for _, city := range cities {
		cw, err := client.Current(ctx, city, opts)
		if err != nil {
			return nil, mapWeatherError(city, err)
		}
		slog.Debug("fetched weather", "city", city, "name", cw.Name, "condition", cw.Condition)
		list = append(list, cw)
	}
	return list, nil
}

// mapWeatherError turns provider failures into the CLI's user-facing errors.
func mapWeatherError(city string, err error) error {
	switch {
	case weather.IsUnauthorized(err):
		return errors.InvalidKeyError(err)
	case weather.IsNotFound(err):
		return errors.CityNotFoundError(city, err)
	case weather.IsRateLimited(err):
		return &errors.RateLimitError{RetryAfter: weather.RetryAfterOf(err)}
	default:
		return err
	}
}

// weatherTable lays out one row per city. The city column shows the name
// the provider resolved, not the raw query.
func weatherTable(list []*weather.CityWeather, units weather.Units) output.Table {
	t := output.Table{Headers: weatherHeaders}
	for _, cw := range list {
		t.Rows = append(t.Rows, []string{
			cw.Name,
			cw.Condition,
			units.Format(cw.Temp),
			units.Format(cw.TempMin),
			units.Format(cw.TempMax),
		})
	}
	return t
}
