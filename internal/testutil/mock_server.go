// Package testutil provides testing utilities for simpleweather.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// WeatherPath is the OpenWeatherMap current weather endpoint.
const WeatherPath = "/data/2.5/weather"

// City is a canned current-weather response. Temperatures are Kelvin.
type City struct {
	Name        string
	Country     string
	Condition   string
	Description string
	Temp        float64
	TempMin     float64
	TempMax     float64
	FeelsLike   float64
	Humidity    int
}

// Body renders c the way OpenWeatherMap does. An empty Condition yields an
// empty weather list.
func (c City) Body() map[string]interface{} {
	weather := []interface{}{}
	if c.Condition != "" {
		weather = append(weather, map[string]interface{}{
			"id":          800,
			"main":        c.Condition,
			"description": c.Description,
			"icon":        "01d",
		})
	}
	return map[string]interface{}{
		"cod":     200,
		"name":    c.Name,
		"weather": weather,
		"main": map[string]interface{}{
			"temp":       c.Temp,
			"feels_like": c.FeelsLike,
			"temp_min":   c.TempMin,
			"temp_max":   c.TempMax,
			"pressure":   1013,
			"humidity":   c.Humidity,
		},
		"wind": map[string]interface{}{"speed": 3.6, "deg": 250},
		"sys":  map[string]interface{}{"country": c.Country},
	}
}

// MockServer provides a test HTTP server for API mocking.
// Unregistered cities get the provider's 404 body.
type MockServer struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
	cities   map[string]http.HandlerFunc
	requests []url.Values
	mu       sync.RWMutex
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		handlers: make(map[string]http.HandlerFunc),
		cities:   make(map[string]http.HandlerFunc),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		ms.mu.Lock()
		ms.requests = append(ms.requests, r.URL.Query())
		handler, ok := ms.handlers[key]
		if !ok && r.Method == http.MethodGet && r.URL.Path == WeatherPath {
			handler, ok = ms.cities[cityKey(r.URL.Query().Get("q"))]
			if !ok {
				handler, ok = cityNotFound, true
			}
		}
		ms.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return ms
}

// URL returns the server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// Handle registers a custom handler for a method+path. It takes precedence
// over city routing.
func (ms *MockServer) Handle(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[method+" "+path] = handler
}

// HandleJSON registers a handler that returns JSON with the given status.
func (ms *MockServer) HandleJSON(method, path string, status int, response interface{}) {
	ms.Handle(method, path, jsonHandler(status, response))
}

// HandleCity answers queries for city.Name (case-insensitive) with city.
func (ms *MockServer) HandleCity(city City) {
	ms.HandleCityQuery(city.Name, http.StatusOK, city.Body())
}

// HandleCityQuery answers the q parameter query with an arbitrary body.
func (ms *MockServer) HandleCityQuery(query string, status int, response interface{}) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.cities[cityKey(query)] = jsonHandler(status, response)
}

// HandleError makes every weather query fail with an OpenWeatherMap error
// body. cod is sent as a number, the way the 401 responses do.
func (ms *MockServer) HandleError(status int, message string) {
	ms.HandleJSON(http.MethodGet, WeatherPath, status, map[string]interface{}{
		"cod":     status,
		"message": message,
	})
}

// HandleRateLimit registers a 429 response with Retry-After header.
func (ms *MockServer) HandleRateLimit(retryAfter int) {
	ms.Handle(http.MethodGet, WeatherPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"cod":     429,
			"message": "Your account is temporary blocked due to exceeding of requests limitation of your subscription type.",
		})
	})
}

// Requests returns the query parameters of every request received so far.
func (ms *MockServer) Requests() []url.Values {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]url.Values, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// Reset clears all registered handlers and recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers = make(map[string]http.HandlerFunc)
	ms.cities = make(map[string]http.HandlerFunc)
	ms.requests = nil
}

func cityKey(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func cityNotFound(w http.ResponseWriter, r *http.Request) {
	jsonHandler(http.StatusNotFound, map[string]interface{}{
		"cod":     "404",
		"message": "city not found",
	})(w, r)
}

func jsonHandler(status int, response interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}
}
