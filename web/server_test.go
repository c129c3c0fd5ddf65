package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/logging"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/stats"
	"github.com/Readm/tring_sim/store"
	"github.com/Readm/tring_sim/topology"
	"github.com/Readm/tring_sim/visual"
)

type fakeSource struct {
	topo  topology.Tring
	fn    routing.Function
	stats stats.Summary
}

func (f *fakeSource) Topology() topology.Topology { return f.topo }
func (f *fakeSource) Routing() routing.Function   { return f.fn }
func (f *fakeSource) Stats() stats.Summary        { return f.stats }

func newAttached(t *testing.T, runs *store.Store) *Server {
	t.Helper()
	tr, err := topology.NewTring(4, 2)
	require.NoError(t, err)
	s := NewServer(runs, logging.Discard())
	s.Attach(&fakeSource{topo: tr, fn: routing.NewDateline(tr), stats: stats.Summary{Injected: 4, Delivered: 3}})
	return s
}

func do(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestDetachedServer(t *testing.T) {
	s := NewServer(nil, nil)
	for _, path := range []string{"/api/topology", "/api/stats", "/api/route?current=0&dest=1"} {
		assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/frame", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/runs", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(s, http.MethodPost, "/api/frame", nil).Code)
}

func TestTopologyAndStats(t *testing.T) {
	s := newAttached(t, nil)

	w := do(s, http.MethodGet, "/api/topology", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var topo topologyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&topo))
	assert.Equal(t, "tring(4,2)", topo.Name)
	require.NotEmpty(t, topo.Nodes)
	assert.Equal(t, topology.NodeID(0), topo.Nodes[0].ID)
	assert.Equal(t, 0, topo.Nodes[0].Level)

	w = do(s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary stats.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 3, summary.Delivered)
}

func TestRouteEndpoint(t *testing.T) {
	s := newAttached(t, nil)

	w := do(s, http.MethodGet, "/api/route?current=0&dest=5&source=0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp routeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "dateline", resp.Routing)
	require.NotEmpty(t, resp.Path)
	assert.Equal(t, resp.Port, resp.Path[0].Port)
	last := resp.Path[len(resp.Path)-1]
	assert.True(t, last.Local)
	assert.Equal(t, topology.NodeID(5), last.Node)

	w = do(s, http.MethodGet, "/api/route?current=0&dest=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = routeResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.Path)

	for _, bad := range []string{
		"/api/route?dest=5",
		"/api/route?current=x&dest=5",
		"/api/route?current=0&dest=500",
		"/api/route?current=0&dest=5&input_vc=4",
	} {
		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, bad, nil).Code, bad)
	}
}

func TestControlEndpoint(t *testing.T) {
	s := newAttached(t, nil)

	w := do(s, http.MethodPost, "/api/control", []byte(`{"type":"step","steps":4}`))
	assert.Equal(t, http.StatusAccepted, w.Code)
	cmd, ok := s.NextCommand()
	require.True(t, ok)
	assert.Equal(t, visual.ControlCommand{Type: visual.CommandStep, Steps: 4}, cmd)
	_, ok = s.NextCommand()
	assert.False(t, ok)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/control", []byte(`{"type":"explode"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/control", []byte(`not json`)).Code)

	for i := 0; i < cap(s.commands); i++ {
		require.True(t, s.QueueCommand(visual.ControlCommand{Type: visual.CommandPause}))
	}
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodPost, "/api/control", []byte(`{"type":"resume"}`)).Code)
}

func TestFrameEndpoint(t *testing.T) {
	s := newAttached(t, nil)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/frame", nil).Code)

	s.PublishFrame(visual.Frame{Cycle: 10, Topology: "tring(4,2)", Delivered: 2})
	w := do(s, http.MethodGet, "/api/frame", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var frame visual.Frame
	require.NoError(t, json.NewDecoder(w.Body).Decode(&frame))
	assert.Equal(t, 10, frame.Cycle)
	assert.Equal(t, 2, frame.Delivered)
	assert.False(t, s.IsHeadless())
}

func TestRunsEndpoints(t *testing.T) {
	runs, err := store.New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	first := &store.Run{Config: "a", Topology: "tring(4,2)", Cycles: 40, Finished: true, CreatedAt: 1}
	second := &store.Run{Config: "b", Topology: "mesh(5,2)", Cycles: 90, CreatedAt: 2}
	require.NoError(t, runs.Save(first))
	require.NoError(t, runs.Save(second))
	s := newAttached(t, runs)

	w := do(s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []store.Run
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Config)

	w = do(s, http.MethodGet, "/api/runs?topology=tring(4,2)", nil)
	var filtered []store.Run
	require.NoError(t, json.NewDecoder(w.Body).Decode(&filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)

	w = do(s, http.MethodGet, "/api/runs/"+strconv.FormatUint(first.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one store.Run
	require.NoError(t, json.NewDecoder(w.Body).Decode(&one))
	assert.Equal(t, 40, one.Cycles)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/runs/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/runs/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/runs?limit=-1", nil).Code)
}

func TestWebsocketStream(t *testing.T) {
	s := newAttached(t, nil)
	s.PublishFrame(visual.Frame{Cycle: 7})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, listener) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+listener.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame visual.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, 7, frame.Cycle)

	require.NoError(t, conn.WriteJSON(controlRequest{Type: "pause"}))
	waitCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	cmd, ok := s.WaitCommand(waitCtx)
	require.True(t, ok)
	assert.Equal(t, visual.CommandPause, cmd.Type)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
