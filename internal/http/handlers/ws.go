package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"shotcraft/internal/domain"
	"shotcraft/internal/middleware"
	"shotcraft/internal/studio"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 64 << 10
)

// wsCommand is a client message. Supported types: select, prompt,
// remove_image, generate.
type wsCommand struct {
	Type  string `json:"type"`
	Axis  string `json:"axis,omitempty"`
	Value string `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
	Index int    `json:"index,omitempty"`
}

type wsError struct {
	Type  string      `json:"type"`
	Error errorDetail `json:"error"`
}

func (a *App) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4 << 10,
		WriteBufferSize: 64 << 10,
		CheckOrigin:     a.checkOrigin,
	}
}

// checkOrigin accepts same-host pages and the configured CORS origins.
func (a *App) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range a.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Socket streams the session view: the current one on connect, then one per
// change. Clients may also drive the session with wsCommand messages.
func (a *App) Socket(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	locale := middleware.LocaleFromContext(r.Context())

	conn, err := a.upgrader().Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	views, cancel := sess.Subscribe()
	defer cancel()

	replies := make(chan wsError, 4)
	done := make(chan struct{})
	go a.readPump(r.Context(), conn, sess, replies, done)
	a.writePump(conn, views, replies, locale, done)
}

func (a *App) readPump(ctx context.Context, conn *websocket.Conn, sess *studio.Session, replies chan<- wsError, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.Logger.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		if err := a.apply(ctx, sess, cmd); err != nil {
			reply := wsError{Type: "error", Error: errorDetail{Code: "bad_request", Message: err.Error()}}
			switch {
			case errors.Is(err, domain.ErrInvalidOption):
				reply.Error.Code = "invalid_option"
			case errors.Is(err, domain.ErrIndexOutOfRange):
				reply.Error.Code = "image_not_found"
			}
			select {
			case replies <- reply:
			default:
			}
		}
	}
}

func (a *App) apply(ctx context.Context, sess *studio.Session, cmd wsCommand) error {
	switch cmd.Type {
	case "select":
		switch cmd.Axis {
		case "angle":
			return sess.SelectAngle(cmd.Value)
		case "shot":
			return sess.SelectShot(cmd.Value)
		case "level":
			return sess.SelectLevel(cmd.Value)
		}
		return errors.New("unknown axis " + cmd.Axis)
	case "prompt":
		sess.SetAdditionalPrompt(cmd.Text)
		return nil
	case "remove_image":
		return sess.RemoveImage(cmd.Index)
	case "generate":
		// The outcome reaches the client as the next views.
		go func() {
			if _, err := sess.Generate(context.WithoutCancel(ctx)); err != nil {
				a.Logger.Debug().Err(err).Msg("websocket generation did not produce an image")
			}
		}()
		return nil
	}
	return errors.New("unknown command " + cmd.Type)
}

func (a *App) writePump(conn *websocket.Conn, views <-chan studio.View, replies <-chan wsError, locale string, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case v := <-views:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(v.Localize(locale)); err != nil {
				return
			}
		case reply := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
