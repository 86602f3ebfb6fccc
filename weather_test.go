package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherModifier(t *testing.T) {
	cases := map[string]float64{
		"Rain":         1.10,
		"Drizzle":      1.10,
		"Thunderstorm": 1.10,
		"Light Rain":   1.10,
		"Clear":        0.95,
		"Sunny":        0.95,
		"Clouds":       1.0,
		"Mist":         1.0,
		"Unknown":      1.0,
		"":             1.0,
	}
	for cond, want := range cases {
		assert.Equal(t, want, WeatherModifier(cond), cond)
	}
}

func TestWeatherReason(t *testing.T) {
	assert.Equal(t, "Rainy (high demand for grocery)", WeatherReason("Rain"))
	assert.Equal(t, "Sunny (low demand / eating out)", WeatherReason("Clear"))
	assert.Equal(t, "Normal weather", WeatherReason("Clouds"))
}

func weatherServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "k3y", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "-0.1807", q.Get("lat"))
		assert.Equal(t, "-78.4678", q.Get("lon"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testWeatherConfig(url string) WeatherConfig {
	return WeatherConfig{APIKey: "k3y", URL: url, Lat: "-0.1807", Lon: "-78.4678"}
}

func TestWeatherClient_Current(t *testing.T) {
	srv := weatherServer(t, http.StatusOK,
		`{"weather":[{"main":"Rain","description":"light rain"}],"main":{"temp":14.2}}`)
	rep := NewWeatherClient(testWeatherConfig(srv.URL)).Current(context.Background())
	assert.Equal(t, WeatherReport{Condition: "Rain", Description: "light rain", TempC: 14.2}, rep)
	assert.Equal(t, 1.10, WeatherModifier(rep.Condition))
}

func TestWeatherClient_FallsBack(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"unauthorized", http.StatusUnauthorized, `{"cod":401}`},
		{"malformed", http.StatusOK, `{"weather":`},
		{"no conditions", http.StatusOK, `{"weather":[],"main":{"temp":20}}`},
		{"no main block", http.StatusOK, `{"weather":[{"main":"Rain"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := weatherServer(t, tc.status, tc.body)
			rep := NewWeatherClient(testWeatherConfig(srv.URL)).Current(context.Background())
			assert.Equal(t, FallbackWeather(), rep)
			assert.Equal(t, 1.0, WeatherModifier(rep.Condition))
		})
	}
}

func TestWeatherClient_NoKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	wc := NewWeatherClient(WeatherConfig{URL: srv.URL})
	require.False(t, wc.Enabled())
	rep := wc.Current(context.Background())
	assert.True(t, rep.Fallback)
	assert.Equal(t, "Unknown", rep.Condition)
	assert.Equal(t, 20.0, rep.TempC)
	assert.False(t, called)
}

func TestWeatherClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	rep := NewWeatherClient(testWeatherConfig(url)).Current(context.Background())
	assert.True(t, rep.Fallback)
}
