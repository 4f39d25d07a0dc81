package monitor_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/recorder/lib/encoder"
	"github.com/go-rod/recorder/lib/monitor"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/goob"
)

func setup(t *testing.T) (*goob.Observable, *monitor.Monitor, *httptest.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	ob := goob.New(ctx)
	m := monitor.New(ob)
	srv := httptest.NewServer(m.Handler())

	t.Cleanup(func() {
		_ = m.Close()
		srv.Close()
		cancel()
	})

	return ob, m, srv
}

func waitClients(t *testing.T, m *monitor.Monitor, n int) {
	require.Eventually(t, func() bool { return m.Clients() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestPage(t *testing.T) {
	_, _, srv := setup(t)

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `new WebSocket("ws://" + location.host + "/ws")`)
}

func TestWebSocket(t *testing.T) {
	ob, m, srv := setup(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	waitClients(t, m, 1)

	ob.Publish("not a frame")
	ob.Publish(encoder.Frame{Data: []byte("jpeg"), Timestamp: time.Now()})

	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	assert.Equal(t, "jpeg", string(msg))

	require.NoError(t, conn.Close())
	waitClients(t, m, 0)
}

func TestMJPEG(t *testing.T) {
	ob, m, srv := setup(t)

	res, err := http.Get(srv.URL + "/mjpeg")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", res.Header.Get("Content-Type"))

	waitClients(t, m, 1)
	ob.Publish(encoder.Frame{Data: []byte("jpeg"), Timestamp: time.Now()})

	expected := "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: 4\r\n\r\njpeg\r\n"
	buf := make([]byte, len(expected))
	_, err = io.ReadFull(res.Body, buf)
	require.NoError(t, err)
	assert.Equal(t, expected, string(buf))

	require.NoError(t, m.Close())
	waitClients(t, m, 0)
}

func TestListen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := monitor.New(goob.New(ctx))

	u, err := m.Listen("127.0.0.1:0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://127.0.0.1:"))

	res, err := http.Get(u)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	require.NoError(t, m.Close())

	_, err = m.Listen("not an address")
	assert.Error(t, err)
}
