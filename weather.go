// FILE: weather.go
// Package main – Live weather read and the demand modifier rule.
//
// WeatherClient hits the OpenWeatherMap current-weather endpoint for the
// store's coordinates (Quito by default). Any failure is absorbed here and
// turned into the fallback report, so the decision engine always gets a
// modifier.
//
// Modifier rule (substring match on the condition):
//   Rain / Drizzle / Thunderstorm -> 1.10  (people cook at home)
//   Clear / Sun                   -> 0.95  (people eat out)
//   anything else                 -> 1.00
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WeatherReport is what the collaborator hands to the core.
type WeatherReport struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description,omitempty"`
	TempC       float64 `json:"temperature"`
	Fallback    bool    `json:"fallback"`
}

// FallbackWeather is returned on any failure.
func FallbackWeather() WeatherReport {
	return WeatherReport{Condition: "Unknown", TempC: 20, Fallback: true}
}

type weatherRule struct {
	needles  []string
	modifier float64
	reason   string
}

// rules are checked in order; the first match wins.
var weatherRules = []weatherRule{
	{needles: []string{"Rain", "Drizzle", "Thunderstorm"}, modifier: 1.10, reason: "Rainy (high demand for grocery)"},
	{needles: []string{"Clear", "Sun"}, modifier: 0.95, reason: "Sunny (low demand / eating out)"},
}

func matchWeatherRule(condition string) (weatherRule, bool) {
	for _, r := range weatherRules {
		for _, n := range r.needles {
			if strings.Contains(condition, n) {
				return r, true
			}
		}
	}
	return weatherRule{}, false
}

// WeatherModifier maps a condition string to a demand multiplier.
func WeatherModifier(condition string) float64 {
	if r, ok := matchWeatherRule(condition); ok {
		return r.modifier
	}
	return 1.0
}

// WeatherReason is the human label shown next to the modifier.
func WeatherReason(condition string) string {
	if r, ok := matchWeatherRule(condition); ok {
		return r.reason
	}
	return "Normal weather"
}

// WeatherClient reads current conditions from OpenWeatherMap.
type WeatherClient struct {
	base   string
	apiKey string
	lat    string
	lon    string
	hc     *http.Client
}

func NewWeatherClient(cfg WeatherConfig) *WeatherClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		base = "https://api.openweathermap.org/data/2.5/weather"
	}
	return &WeatherClient{
		base:   base,
		apiKey: strings.TrimSpace(cfg.APIKey),
		lat:    cfg.Lat,
		lon:    cfg.Lon,
		hc:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (wc *WeatherClient) Enabled() bool { return wc != nil && wc.apiKey != "" }

type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current never fails; errors are logged and replaced by FallbackWeather.
func (wc *WeatherClient) Current(ctx context.Context) WeatherReport {
	rep, err := wc.fetch(ctx)
	if err != nil {
		logger.Warn("weather: using fallback", zap.Error(err))
		IncWeatherFallback()
		rep = FallbackWeather()
	}
	SetWeatherModifierMetric(WeatherModifier(rep.Condition))
	return rep
}

func (wc *WeatherClient) fetch(ctx context.Context) (WeatherReport, error) {
	if !wc.Enabled() {
		return WeatherReport{}, fmt.Errorf("no api key configured")
	}
	q := url.Values{}
	q.Set("lat", wc.lat)
	q.Set("lon", wc.lon)
	q.Set("appid", wc.apiKey)
	q.Set("units", "metric")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wc.base+"?"+q.Encode(), nil)
	if err != nil {
		return WeatherReport{}, err
	}
	resp, err := wc.hc.Do(req)
	if err != nil {
		return WeatherReport{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return WeatherReport{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return WeatherReport{}, fmt.Errorf("weather status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out owmResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return WeatherReport{}, fmt.Errorf("weather decode: %w", err)
	}
	if len(out.Weather) == 0 || out.Main == nil || out.Weather[0].Main == "" {
		return WeatherReport{}, fmt.Errorf("weather payload missing fields")
	}
	return WeatherReport{
		Condition:   out.Weather[0].Main,
		Description: out.Weather[0].Description,
		TempC:       out.Main.Temp,
	}, nil
}
