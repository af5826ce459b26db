// Package weather is a small client for the OpenWeatherMap current weather
// endpoint.
//
// The client always asks the provider for Kelvin and leaves conversion to
// Units, so a single response can be shown in any unit system:
//
//	client := weather.NewClient(apiKey)
//	cw, err := client.Current(ctx, "Oslo", nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(weather.Metric.Format(cw.Temp)) // "5 °C"
package weather
