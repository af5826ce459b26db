package weather

import (
	"context"
	"net/url"
	"strings"

	ctxerrors "github.com/salmonumbrella/simpleweather/internal/errors"
)

const currentPath = "/data/2.5/weather"

// noCondition is shown when the provider returns an empty weather list.
const noCondition = "None"

// Options are optional parameters for Current.
type Options struct {
	// Lang localizes the condition description, e.g. "de".
	Lang string
}

// CityWeather is the current weather for one city. Temperatures are Kelvin.
type CityWeather struct {
	Name        string
	Country     string
	Condition   string
	Description string
	Temp        float64
	TempMin     float64
	TempMax     float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	WindSpeed   float64
	WindDeg     int
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Current fetches the current weather for city. The city is passed to the
// provider as-is, so "London,GB" style qualifiers work.
func (c *Client) Current(ctx context.Context, city string, opts *Options) (*CityWeather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, &ctxerrors.ValidationError{Field: "city", Message: "city is required"}
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", string(Standard))
	if opts != nil && opts.Lang != "" {
		query.Set("lang", opts.Lang)
	}

	var resp currentResponse
	if err := c.doGet(ctx, currentPath, query, &resp); err != nil {
		return nil, err
	}

	cw := &CityWeather{
		Name:      resp.Name,
		Country:   resp.Sys.Country,
		Condition: noCondition,
		Temp:      resp.Main.Temp,
		TempMin:   resp.Main.TempMin,
		TempMax:   resp.Main.TempMax,
		FeelsLike: resp.Main.FeelsLike,
		Humidity:  resp.Main.Humidity,
		Pressure:  resp.Main.Pressure,
		WindSpeed: resp.Wind.Speed,
		WindDeg:   resp.Wind.Deg,
	}
	if cw.Name == "" {
		cw.Name = city
	}
	if len(resp.Weather) > 0 {
		cw.Condition = resp.Weather[0].Main
		cw.Description = resp.Weather[0].Description
	}
	return cw, nil
}

// Reading is a CityWeather converted to one unit system, ready for
// structured output.
type Reading struct {
	City        string `json:"city" yaml:"city"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	Condition   string `json:"condition" yaml:"condition"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Temperature int    `json:"temperature" yaml:"temperature"`
	TempMin     int    `json:"temp_min" yaml:"temp_min"`
	TempMax     int    `json:"temp_max" yaml:"temp_max"`
	FeelsLike   int    `json:"feels_like" yaml:"feels_like"`
	Humidity    int    `json:"humidity" yaml:"humidity"`
	Units       Units  `json:"units" yaml:"units"`
}

// Reading converts w into u.
func (w *CityWeather) Reading(u Units) Reading {
	return Reading{
		City:        w.Name,
		Country:     w.Country,
		Condition:   w.Condition,
		Description: w.Description,
		Temperature: u.Convert(w.Temp),
		TempMin:     u.Convert(w.TempMin),
		TempMax:     u.Convert(w.TempMax),
		FeelsLike:   u.Convert(w.FeelsLike),
		Humidity:    w.Humidity,
		Units:       u,
	}
}
