// Package ws accepts the buyer device's position stream over a websocket.
//
// The device sends JSON frames:
//
//	{"type": "position", "data": {"lat": 28.6139, "lng": 77.2090}}
//	{"type": "error", "data": {"message": "User denied Geolocation"}}
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"

	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
)

var errLatLngRequired = errors.New("lat and lng are required")

// PositionSink receives decoded device frames.
type PositionSink interface {
	Push(loc kernel.Location) error
	PushError(err error)
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type positionData struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type errorData struct {
	Message string `json:"message"`
}

// DevicePositionHandler upgrades the request and forwards frames to the sink
// until the device disconnects.
type DevicePositionHandler struct {
	sink     PositionSink
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewDevicePositionHandler builds the handler. allowedOrigins lists the
// browser origins that may connect, for example "https://app.example.com";
// "*" admits any origin. With an empty list only same-host pages connect.
// Requests without an Origin header, such as native clients, are always
// accepted.
func NewDevicePositionHandler(sink PositionSink, allowedOrigins []string, logger *slog.Logger) *DevicePositionHandler {
	return &DevicePositionHandler{
		sink:   sink,
		logger: logger.With("component", "DevicePositionHandler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		if len(allowed) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}

		origin = strings.TrimSuffix(origin, "/")
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}

func (h *DevicePositionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("device connected", "remote", r.RemoteAddr)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ping(conn, done)
	}()

	h.readLoop(conn)

	close(done)
	wg.Wait()
	h.logger.Info("device disconnected", "remote", r.RemoteAddr)
}

func (h *DevicePositionHandler) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("device read failed", "error", err)
			}
			return
		}

		var msg frame
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Warn("malformed device frame", "error", err)
			continue
		}

		if err := h.handle(msg); err != nil {
			h.logger.Warn("rejected device frame", "type", msg.Type, "error", err)
		}
	}
}

func (h *DevicePositionHandler) handle(msg frame) error {
	switch msg.Type {
	case "position":
		var p positionData
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return err
		}
		if p.Lat == nil || p.Lng == nil {
			return errs.NewValueIsRequiredErrorWithCause("position", errLatLngRequired)
		}
		loc, err := kernel.NewLocation(*p.Lat, *p.Lng)
		if err != nil {
			return err
		}
		return h.sink.Push(loc)

	case "error":
		var e errorData
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return err
		}
		if e.Message == "" {
			e.Message = "Position unavailable"
		}
		h.sink.PushError(errors.New(e.Message))
		return nil

	default:
		return errors.New("unknown frame type")
	}
}

func (h *DevicePositionHandler) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
