package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

type stubManager struct {
	stats  txn.StatsSnapshot
	resets int
}

func (s *stubManager) Stats() txn.StatsSnapshot { return s.stats }
func (s *stubManager) ResetStats()              { s.resets++ }
func (s *stubManager) Config() txn.Config       { return txn.DefaultConfig() }

func (s *stubManager) Contexts() []txn.ContextInfo {
	return []txn.ContextInfo{{ID: "ctx-1", Name: "audit", Depth: 1, Age: time.Second, Active: true}}
}

func (s *stubManager) SourceStatus(name string) (txn.PoolStatus, bool) {
	if name != "DB" {
		return txn.PoolStatus{}, false
	}
	return txn.PoolStatus{Initialized: true, HasMetadata: true}, true
}

func newTestServer(t *testing.T) (*server, *stubManager) {
	t.Helper()

	m := &stubManager{stats: txn.StatsSnapshot{Total: 3, Succeeded: 2, Failed: 1}}
	s := NewServer(Config{}, logger.NewStub(), m).(*server)
	return s, m
}

func TestServer_Stats(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.http.Test(httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got txn.StatsSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.EqualValues(t, 3, got.Total)
	require.EqualValues(t, 1, got.Failed)
}

func TestServer_StatsReset(t *testing.T) {
	s, m := newTestServer(t)

	resp, err := s.http.Test(httptest.NewRequest(http.MethodPost, "/stats/reset", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, 1, m.resets)
}

func TestServer_Contexts(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.http.Test(httptest.NewRequest(http.MethodGet, "/contexts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []txn.ContextInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	require.Equal(t, "ctx-1", got[0].ID)
}

func TestServer_PoolStatus(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.http.Test(httptest.NewRequest(http.MethodGet, "/pool/DB", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.http.Test(httptest.NewRequest(http.MethodGet, "/pool/unknown", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
