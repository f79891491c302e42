package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"market-structure/src/logger"
	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func testServer(t *testing.T) *FastAPIServer {
	t.Helper()
	cfg := &models.MConfig{Host: "127.0.0.1", Port: 0, LogLevel: "ERROR"}
	return NewFastAPIServer(cfg, logger.NewLogger("ERROR", "test"))
}

func testReport(symbol string, asOf int64) models.MStructureReport {
	return models.MStructureReport{Symbol: symbol, AsOf: asOf, BarCount: 1}
}

func recvState(t *testing.T, ch chan *models.MLatestData) *models.MLatestData {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state on client channel")
		return nil
	}
}

// -----------------------------------------------------------------------------
// State isolation
// -----------------------------------------------------------------------------

// A connecting client must get a copy of the served state. Merging fresh
// reports afterwards may not show up in, or race with, what the client is
// serializing.
func TestClientSnapshotIsolatedFromStateMerges(t *testing.T) {
	s := testServer(t)
	s.UpdateReports(map[string]models.MStructureReport{
		"AAPL": testReport("AAPL", 100),
	}, models.MProcessingMetrics{})

	go s.handleWebsockets()
	defer s.Stop()

	client := &Client{hub: s, send: make(chan *models.MLatestData, 4)}
	s.register <- client

	snapshot := recvState(t, client.send)
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1), s.connCount.Load())

	// Serialize the snapshot while the served state keeps churning, the way
	// writePump runs against the update loop.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.UpdateReports(map[string]models.MStructureReport{
				"MSFT": testReport("MSFT", int64(i)),
			}, models.MProcessingMetrics{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := json.Marshal(snapshot)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	// The snapshot reflects the state at connect time only.
	assert.Contains(t, snapshot.Reports, "AAPL")
	assert.NotContains(t, snapshot.Reports, "MSFT")
}

func TestSubscribeResponseCopiesState(t *testing.T) {
	s := testServer(t)
	s.UpdateReports(map[string]models.MStructureReport{
		"AAPL": testReport("AAPL", 100),
		"MSFT": testReport("MSFT", 100),
	}, models.MProcessingMetrics{})

	// Empty list means everything, but still a private copy.
	resp := s.subscribeResponse(nil)
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "INITIAL", resp.Type)

	resp.Reports["TSLA"] = testReport("TSLA", 200)
	s.stateMutex.RLock()
	_, leaked := s.latestState.Reports["TSLA"]
	s.stateMutex.RUnlock()
	assert.False(t, leaked, "subscribe response must not alias the served state")

	// Explicit list filters, unknown symbols are ignored.
	resp = s.subscribeResponse([]string{"MSFT", "NOPE"})
	assert.Len(t, resp.Reports, 1)
	assert.Contains(t, resp.Reports, "MSFT")
}

func TestLatestDataSnapshotCopiesReports(t *testing.T) {
	state := &models.MLatestData{
		Type:      "UPDATE",
		Reports:   map[string]models.MStructureReport{"AAPL": testReport("AAPL", 1)},
		Timestamp: 42,
	}

	snap := state.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, state.Reports, snap.Reports)

	state.Reports["MSFT"] = testReport("MSFT", 2)
	assert.NotContains(t, snap.Reports, "MSFT")

	var nilState *models.MLatestData
	assert.Nil(t, nilState.Snapshot())
}

// -----------------------------------------------------------------------------
// Shutdown
// -----------------------------------------------------------------------------

func TestStopDrainsClientsAndIsIdempotent(t *testing.T) {
	s := testServer(t)
	go s.handleWebsockets()

	client := &Client{hub: s, send: make(chan *models.MLatestData, 4)}
	s.register <- client
	recvState(t, client.send)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	// The Hub closes the client channel on its way out.
	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("client channel not closed after Stop")
	}
	assert.Equal(t, int64(0), s.connCount.Load())

	// A broadcast after Stop is dropped instead of blocking or panicking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			s.Broadcast(&models.MLatestData{Reports: map[string]models.MStructureReport{}})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked after Stop")
	}
}
