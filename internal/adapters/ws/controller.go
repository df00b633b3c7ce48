package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scrumpoker/server/internal/app"
	"github.com/scrumpoker/server/internal/config"
	"github.com/scrumpoker/server/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	Orch *app.Orchestrator
	Cfg  *config.Config
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{Orch: orch, Cfg: cfg}
}

// Handle upgrades the request and attaches the connection to the room
// coordination core. Every upgrade gets its own identity: the socket is
// the unit of session tracking, while the cookie token only identifies
// the browser across reconnects. Two sockets from one browser must never
// share a ConnID or a delayed closure of the old socket would tear down
// the session the new one just bound.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	id := core.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "ws").Err(err).Msg("upgrade failed")
		return
	}
	log.Info().Str("module", "ws").Str("conn", string(id)).Str("client", c.GetString("client_token")).Msg("new connection")

	conn := newWSConn(ws, ctl.Cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Str("module", "ws").Err(err).Msg("write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the connection's lifetime: when it exits, for whatever
// reason, the disconnect is reported to the orchestrator so transport drop
// and explicit leave converge on the same cleanup.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, id core.ConnID, c *wsConn) {
	defer func() {
		cancel()
		c.Close()
		ctl.Orch.Disconnect(id)
		log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connection closed")
	}()

	// Peers that stop answering pings are dropped by the read deadline.
	pongWait := ctl.Cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Str("module", "ws").Str("conn", string(id)).Err(err).Msg("read error")
				}
				return
			}
			ctl.Orch.HandleFrame(id, c, data)
		}
	}
}
