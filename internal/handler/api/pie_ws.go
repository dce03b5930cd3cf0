package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"EnergyView/internal/domain/models"
	"EnergyView/internal/service/metrics"
	"EnergyView/internal/services/partition"
	"EnergyView/internal/usecase"
	xhttp "EnergyView/pkg/http"
	applogger "EnergyView/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 4096
)

// viewCommand is the only message a client sends: {"view":"total"}.
type viewCommand struct {
	View string `json:"view"`
}

// socketMessage is pushed to the client on connect and on every view change.
type socketMessage struct {
	Type  string            `json:"type"` // chart or error
	Chart *models.ChartData `json:"chart,omitempty"`
	Error string            `json:"error,omitempty"`
}

// PieSocketHandler keeps one history per connection and lets the client
// switch views without reloading it.
type PieSocketHandler struct {
	l           *applogger.Logger
	svc         *usecase.HistoryService
	defaultView partition.View
	upgrader    websocket.Upgrader
	pingPeriod  time.Duration
}

func NewPieSocketHandler(l *applogger.Logger, svc *usecase.HistoryService, defaultView partition.View, allowOrigins []string) *PieSocketHandler {
	metrics.Register()
	h := &PieSocketHandler{l: l, svc: svc, defaultView: defaultView, pingPeriod: wsPingPeriod}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowOrigins, "*") || slices.Contains(allowOrigins, origin)
		},
	}
	return h
}

func (h *PieSocketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/pie", h.Serve)
}

// Serve validates the query and loads the history before upgrading, so bad
// requests still get a plain HTTP error.
func (h *PieSocketHandler) Serve(c echo.Context) error {
	req := &models.PieRequest{View: h.defaultView.String()}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, verr := historyQuery(req.Source, req.From, req.To)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view, err := partition.ParseView(req.View)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	hist, err := h.svc.Load(c.Request().Context(), q)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied
		h.l.Debug("websocket upgrade failed", applogger.Error(err))
		return nil
	}

	metrics.WSSessions.Inc()
	defer metrics.WSSessions.Dec()

	s := &pieSession{
		conn:    conn,
		l:       h.l.With(applogger.String("source", q.Source)),
		builder: h.svc.Builder(),
		history: hist,
		state:   usecase.NewViewState(view),
		out:     make(chan socketMessage, 4),
		ping:    h.pingPeriod,
	}
	s.run(context.Background())
	return nil
}

type pieSession struct {
	conn    *websocket.Conn
	l       *applogger.Logger
	builder *usecase.PieChartBuilder
	history *models.EnergyHistory
	state   *usecase.ViewState
	out     chan socketMessage
	ping    time.Duration
}

func (s *pieSession) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx)
	}()

	s.out <- s.render(s.state.Current())
	s.readLoop(ctx)

	cancel()
	<-done
	_ = s.conn.Close()
}

// readLoop applies view commands until the client goes away.
func (s *pieSession) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(wsReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.l.Warn("websocket read failed", applogger.Error(err))
			}
			return
		}

		var cmd viewCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.send(ctx, socketMessage{Type: "error", Error: "expected {\"view\": \"total|activity|average\"}"})
			continue
		}
		view, err := partition.ParseView(cmd.View)
		if err != nil {
			s.send(ctx, socketMessage{Type: "error", Error: err.Error()})
			continue
		}
		if !s.state.Switch(view) {
			continue
		}
		s.send(ctx, s.render(view))
	}
}

func (s *pieSession) render(view partition.View) socketMessage {
	data, err := s.builder.Build(s.history, view)
	if err != nil {
		s.l.Warn("websocket chart build failed", applogger.String("view", view.String()), applogger.Error(err))
		return socketMessage{Type: "error", Error: err.Error()}
	}
	return socketMessage{Type: "chart", Chart: data}
}

func (s *pieSession) send(ctx context.Context, m socketMessage) {
	select {
	case s.out <- m:
	case <-ctx.Done():
	}
}

func (s *pieSession) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.ping)
	defer ticker.Stop()

	for {
		select {
		case m := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteJSON(m); err != nil {
				s.l.Debug("websocket write failed", applogger.Error(err))
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}
