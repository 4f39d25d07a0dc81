// Package monitor serves a live preview of the frames being recorded.
// Open the root path in a browser to watch it, or consume the raw streams:
//
//	/ws     websocket, each binary message is a JPEG frame
//	/mjpeg  multipart MJPEG stream, works with a plain <img> tag
package monitor

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/go-rod/recorder/lib/encoder"
	"github.com/gorilla/websocket"
	"github.com/ysmood/goob"
)

// Monitor server
type Monitor struct {
	ctx       context.Context
	ctxCancel func()

	events   *goob.Observable
	engine   *gin.Engine
	upgrader websocket.Upgrader
	server   *http.Server
	clients  int32
}

// New monitor that streams the encoder.Frame events published to events
func New(events *goob.Observable) *Monitor {
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		ctx:       ctx,
		ctxCancel: cancel,
		events:    events,
		engine:    gin.New(),
	}

	m.engine.Use(gin.Recovery())
	m.engine.GET("/", m.page)
	m.engine.GET("/ws", m.ws)
	m.engine.GET("/mjpeg", m.mjpeg)

	return m
}

// Handler of the http routes
func (m *Monitor) Handler() http.Handler {
	return m.engine
}

// Listen on addr and serve in background, returns the url of the preview page
func (m *Monitor) Listen(addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	m.server = &http.Server{Handler: m.engine}
	go func() { _ = m.server.Serve(l) }()

	return "http://" + l.Addr().String(), nil
}

// Clients returns the number of connected viewers
func (m *Monitor) Clients() int {
	return int(atomic.LoadInt32(&m.clients))
}

// Close all the streams and the server
func (m *Monitor) Close() error {
	m.ctxCancel()
	if m.server == nil {
		return nil
	}
	return m.server.Close()
}

// each calls fn with the data of every frame until ctx is done or fn returns an error
func (m *Monitor) each(ctx context.Context, fn func([]byte) error) {
	events := m.events.Subscribe(ctx)

	atomic.AddInt32(&m.clients, 1)
	defer atomic.AddInt32(&m.clients, -1)

	for e := range events {
		f, ok := e.(encoder.Frame)
		if !ok {
			continue
		}
		if fn(f.Data) != nil {
			return
		}
	}
}

func (m *Monitor) page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(previewHTML))
}

func (m *Monitor) ws(c *gin.Context) {
	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()

	// the connection is hijacked, the request context won't tell us when the client leaves
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	m.each(ctx, func(data []byte) error {
		return conn.WriteMessage(websocket.BinaryMessage, data)
	})
}

func (m *Monitor) mjpeg(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	m.each(ctx, func(data []byte) error {
		return writeMJPEGFrame(c.Writer, data, c.Writer)
	})
}

// writeMJPEGFrame writes a single MJPEG frame to the response writer
func writeMJPEGFrame(w io.Writer, frame []byte, flusher http.Flusher) error {
	parts := [][]byte{
		[]byte("--frame\r\n"),
		[]byte("Content-Type: image/jpeg\r\n"),
		[]byte(fmt.Sprintf("Content-Length: %d\r\n\r\n", len(frame))),
		frame,
		[]byte("\r\n"),
	}

	for _, part := range parts {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}

	flusher.Flush()
	return nil
}

const previewHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>recorder</title>
    <style>
        body { margin: 0; background: #222; display: flex; justify-content: center; }
        img { max-width: 100%; }
    </style>
</head>
<body>
    <img id="screen" alt="waiting for frames" />
    <script>
        const ws = new WebSocket("ws://" + location.host + "/ws");
        const img = document.getElementById("screen");
        let url;

        ws.onmessage = (event) => {
            if (url) URL.revokeObjectURL(url);
            url = URL.createObjectURL(event.data);
            img.src = url;
        };
    </script>
</body>
</html>`
