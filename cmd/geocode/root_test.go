package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

const parisBody = `{"status":"OK","results":[
  {"formatted_address":"Paris, France","geometry":{"location":{"lat":48.856614,"lng":2.3522219}},"types":["locality","political"]},
  {"formatted_address":"Paris, TX, USA","geometry":{"location":{"lat":33.6609389,"lng":-95.555513}},"types":["locality"]}
]}`

const winnetkaBody = `{"status":"OK","results":[{"formatted_address":"Winnetka, IL, USA","geometry":{"location":{"lat":42.108,"lng":-87.735}},"types":["locality"]}]}`

// fakeAPI serves body and records the last query string.
func fakeAPI(t *testing.T, body string, lastQuery *url.Values) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastQuery != nil {
			*lastQuery = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Host
}

func execute(t *testing.T, host string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--domain", host, "--key", ""))
	err := cmd.Execute()
	return out.String(), err
}

func TestGeocode_JSONSingle(t *testing.T) {
	var q url.Values
	host := fakeAPI(t, winnetkaBody, &q)

	out, err := execute(t, host, "Winnetka", "--format", "json")
	require.NoError(t, err)

	var places []domain.PlaceResult
	require.NoError(t, json.Unmarshal([]byte(out), &places))
	require.Len(t, places, 1)
	assert.Equal(t, "Winnetka, IL, USA", places[0].Address)
	assert.Equal(t, 42.108, places[0].Lat)
	assert.Nil(t, places[0].Types)
	assert.Equal(t, "Winnetka", q.Get("address"))
}

func TestGeocode_JoinsAddressArgs(t *testing.T) {
	var q url.Values
	host := fakeAPI(t, winnetkaBody, &q)

	_, err := execute(t, host, "1600", "Amphitheatre", "Pkwy", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "1600 Amphitheatre Pkwy", q.Get("address"))
}

func TestGeocode_AllWithBoundsAndRegion(t *testing.T) {
	var q url.Values
	host := fakeAPI(t, parisBody, &q)

	out, err := execute(t, host, "Paris", "--all", "--types", "--format", "json",
		"--bounds", "34.172684,-118.604794|34.236144,-118.500938", "--region", "US")
	require.NoError(t, err)

	var places []domain.PlaceResult
	require.NoError(t, json.Unmarshal([]byte(out), &places))
	require.Len(t, places, 2)
	assert.Equal(t, "Paris, TX, USA", places[1].Address)
	assert.Equal(t, []string{"locality", "political"}, places[0].Types)

	assert.Equal(t, "34.172684,-118.604794|34.236144,-118.500938", q.Get("bounds"))
	assert.Equal(t, "us", q.Get("region"))
}

func TestGeocode_NotExactlyOne(t *testing.T) {
	host := fakeAPI(t, parisBody, nil)

	_, err := execute(t, host, "Paris", "--format", "json")
	assert.ErrorIs(t, err, domain.ErrNotExactlyOne)
}

func TestGeocode_Table(t *testing.T) {
	host := fakeAPI(t, parisBody, nil)

	out, err := execute(t, host, "Paris", "--all", "--types", "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "Address")
	assert.Contains(t, out, "Types")
	assert.Contains(t, out, "Paris, France")
	assert.Contains(t, out, "48.856614")
	assert.Contains(t, out, "locality, political")
}

func TestGeocode_DefaultsToJSONWhenNotATerminal(t *testing.T) {
	host := fakeAPI(t, winnetkaBody, nil)

	out, err := execute(t, host, "Winnetka")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestGeocode_InvalidFlags(t *testing.T) {
	host := fakeAPI(t, winnetkaBody, nil)

	tests := [][]string{
		{"Winnetka", "--format", "yaml"},
		{"Winnetka", "--bounds", "north|south"},
		{"Winnetka", "--region", "france"},
		{"Winnetka", "--bounds", "1,2", "--format", "json"},
	}
	for _, args := range tests {
		_, err := execute(t, host, args...)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter, "%v", args)
	}
}

func TestGeocode_RequiresAddress(t *testing.T) {
	_, err := execute(t, "localhost:1")
	assert.Error(t, err)
}

func TestPoint(t *testing.T) {
	host := fakeAPI(t, winnetkaBody, nil)

	out, err := execute(t, host, "point", "Winnetka")
	require.NoError(t, err)
	assert.Equal(t, "42.108,-87.735\n", out)
}

func TestPoint_NoResult(t *testing.T) {
	host := fakeAPI(t, `{"status":"ZERO_RESULTS","results":[]}`, nil)

	_, err := execute(t, host, "point", "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no place found")
}
