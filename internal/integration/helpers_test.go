//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/storm-geocoder/internal/adapter/google"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

const (
	winnetkaBody = `{"status":"OK","results":[{"formatted_address":"Winnetka, IL, USA","geometry":{"location":{"lat":42.108,"lng":-87.735}},"types":["locality","political"]}]}`
	parisBody    = `{"status":"OK","results":[
  {"formatted_address":"Paris, France","geometry":{"location":{"lat":48.856614,"lng":2.3522219}}},
  {"formatted_address":"Paris, TX, USA","geometry":{"location":{"lat":33.6609389,"lng":-95.555513}}}
]}`
	zeroResultsBody = `{"status":"ZERO_RESULTS","results":[]}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// fakeGoogle answers by address: Paris is ambiguous, Nowhere has no match,
// everything else resolves to Winnetka.
func fakeGoogle(t *testing.T) *google.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("address") {
		case "Paris":
			_, _ = io.WriteString(w, parisBody)
		case "Nowhere":
			_, _ = io.WriteString(w, zeroResultsBody)
		default:
			_, _ = io.WriteString(w, winnetkaBody)
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client, err := google.NewClient(
		google.WithScheme(u.Scheme),
		google.WithDomain(u.Host),
		google.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		google.WithLogger(discardLogger()),
		google.WithMetrics(observability.NewMetricsForTesting()),
	)
	require.NoError(t, err)
	return client
}
