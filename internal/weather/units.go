package weather

import (
	"fmt"
	"math"
	"strings"
)

// Units selects the unit system temperatures are shown in.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
	Standard Units = "standard"
)

const absoluteZeroCelsius = 273.15

// ParseUnits accepts metric, imperial or standard (case-insensitive).
// The empty string means Metric.
func ParseUnits(s string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(s))) {
	case "", Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	case Standard:
		return Standard, nil
	default:
		return "", fmt.Errorf("invalid units %q (expected metric|imperial|standard)", s)
	}
}

// Convert turns a Kelvin reading into whole units, rounding half away
// from zero.
func (u Units) Convert(kelvin float64) int {
	var v float64
	switch u {
	case Imperial:
		v = (kelvin-absoluteZeroCelsius)*9/5 + 32
	case Standard:
		v = kelvin
	default:
		v = kelvin - absoluteZeroCelsius
	}
	return int(math.Round(v))
}

// Label is the suffix printed after a converted temperature.
func (u Units) Label() string {
	switch u {
	case Imperial:
		return "°F"
	case Standard:
		return "K"
	default:
		return "°C"
	}
}

// Format converts kelvin and appends the unit label, e.g. "5 °C".
func (u Units) Format(kelvin float64) string {
	return fmt.Sprintf("%d %s", u.Convert(kelvin), u.Label())
}

func (u Units) String() string {
	if u == "" {
		return string(Metric)
	}
	return string(u)
}
