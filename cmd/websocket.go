package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
)

const (
	wsReadLimit     = 1 << 20
	wsReadDeadline  = 120 * time.Second
	wsWriteDeadline = 5 * time.Second
	wsPingInterval  = 15 * time.Second
	wsHelloDeadline = 30 * time.Second
)

// rentalEventMsg is the frame pushed to connected clients when a
// rental changes state.
type rentalEventMsg struct {
	Event    string    `json:"event"`
	RentalID int       `json:"rental_id"`
	ItemID   int       `json:"item_id"`
	ItemName string    `json:"item_name"`
	Status   string    `json:"status"`
	SentAt   time.Time `json:"sent_at"`
}

type wsDirect struct {
	userID int
	msg    rentalEventMsg
}

type wsClient struct {
	id   int
	conn *websocket.Conn
}

type wsUnreg struct {
	userID int
	conn   *websocket.Conn
}

type wsPing struct {
	userID int
	conn   *websocket.Conn
}

// WSHub owns every live connection. All access to clients and all
// writes happen in Run; ping frames go through the ping channel so no
// second goroutine ever writes to a connection.
type WSHub struct {
	infoLog    *log.Logger
	clients    map[int]*websocket.Conn
	direct     chan wsDirect
	register   chan wsClient
	unregister chan wsUnreg
	ping       chan wsPing
}

func NewWSHub(infoLog *log.Logger) *WSHub {
	return &WSHub{
		infoLog:    infoLog,
		clients:    make(map[int]*websocket.Conn),
		direct:     make(chan wsDirect),
		register:   make(chan wsClient),
		unregister: make(chan wsUnreg),
		ping:       make(chan wsPing),
	}
}

func (h *WSHub) Run() {
	for {
		select {
		case c := <-h.register:
			// one socket per user; close a stale one
			if old, ok := h.clients[c.id]; ok && old != nil && old != c.conn {
				_ = old.Close()
			}
			h.clients[c.id] = c.conn
			h.infoLog.Printf("WS register user=%d", c.id)

		case u := <-h.unregister:
			if cur, ok := h.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(h.clients, u.userID)
				h.infoLog.Printf("WS unregister user=%d", u.userID)
			}

		case dm := <-h.direct:
			conn, ok := h.clients[dm.userID]
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteJSON(dm.msg); err != nil {
				h.infoLog.Printf("WS send error to=%d: %v", dm.userID, err)
				_ = conn.Close()
				delete(h.clients, dm.userID)
			}

		case p := <-h.ping:
			// stale request for a connection that was replaced or dropped
			if cur, ok := h.clients[p.userID]; !ok || cur != p.conn {
				continue
			}
			_ = p.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.infoLog.Printf("WS ping error to=%d: %v", p.userID, err)
				_ = p.conn.Close()
				delete(h.clients, p.userID)
			}
		}
	}
}

// RentalEvent pushes the state change to both parties of the rental.
// Offline users are skipped; FCM covers them.
func (h *WSHub) RentalEvent(ctx context.Context, rental models.Rental, event string) {
	msg := rentalEventMsg{
		Event:    event,
		RentalID: rental.ID,
		ItemID:   rental.ItemID,
		ItemName: rental.ItemName,
		Status:   rental.Status,
		SentAt:   time.Now(),
	}
	for _, userID := range []int{rental.RenterID, rental.OwnerID} {
		select {
		case h.direct <- wsDirect{userID: userID, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

var _ services.RentalEventNotifier = (*WSHub)(nil)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// serveWS upgrades the connection. The first frame must carry the
// caller's access token: { "token": "<jwt>" }.
func (app *application) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("WS upgrade error: %v", err)
		return
	}

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsHelloDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	var hello struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.Token == "" {
		_ = writeClose(conn, websocket.ClosePolicyViolation, "hello required")
		_ = conn.Close()
		return
	}
	userID, err := app.tokens.Parse(hello.Token)
	if err != nil {
		_ = writeClose(conn, websocket.ClosePolicyViolation, "invalid token")
		_ = conn.Close()
		return
	}
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

	app.wsHub.register <- wsClient{id: userID, conn: conn}

	done := make(chan struct{})
	go app.wsPingLoop(conn, userID, done)
	go app.wsReadLoop(conn, userID, done)
}

// wsPingLoop asks the hub to ping on an interval; the hub does the
// actual write so the connection only ever has one writer.
func (app *application) wsPingLoop(conn *websocket.Conn, userID int, done <-chan struct{}) {
	t := time.NewTicker(wsPingInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			select {
			case app.wsHub.ping <- wsPing{userID: userID, conn: conn}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

// wsReadLoop drains incoming frames; the socket is push-only, so
// anything the client sends is discarded.
func (app *application) wsReadLoop(conn *websocket.Conn, userID int, done chan<- struct{}) {
	defer func() {
		close(done)
		app.wsHub.unregister <- wsUnreg{userID: userID, conn: conn}
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(wsWriteDeadline))
}
