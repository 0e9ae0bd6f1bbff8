package measure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBinding() types.Binding {
	return types.Binding{
		PlantID:     "plant-1",
		TerminalID:  "terminal-7",
		MeasurandID: "temp",
	}
}

func TestClient_LatestReturnsMostRecentSample(t *testing.T) {
	t0 := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/measurements/plant-1/terminal-7/temp", r.URL.Path)
		json.NewEncoder(w).Encode([]Point{
			{Value: 20.1, Unit: "°C", Timestamp: t0},
			{Value: 21.4, Unit: "°C", Timestamp: t0.Add(time.Minute)},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	point, err := c.Latest(context.Background(), testBinding())

	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, 21.4, point.Value)
	assert.Equal(t, "°C", point.Unit)
}

func TestClient_LatestNoDataIsNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Point{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	point, err := c.Latest(context.Background(), testBinding())

	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestClient_SeriesPassesWindowAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1h0m0s", r.URL.Query().Get("window"))
		assert.Equal(t, "250", r.URL.Query().Get("max_points"))
		json.NewEncoder(w).Encode([]Point{{Value: 1}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	points, err := c.Series(context.Background(), testBinding(), time.Hour, 250)

	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestClient_ServerErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := c.Latest(context.Background(), testBinding())

	var terr *types.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "measurement fetch", terr.Op)
}

func TestClient_UnreachableHostIsTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop())
	_, err := c.Latest(context.Background(), testBinding())

	var terr *types.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestClient_MalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := c.Latest(context.Background(), testBinding())

	var terr *types.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "measurement decode", terr.Op)
}
