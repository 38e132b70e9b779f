// Package broadcast is the opaque wire-protocol fan-out transport named
// in spec.md §6: a websocket hub that rebroadcasts every message it
// receives from one peer to every other connected peer, grounded on
// original_source/sanchain/broadcast/{host,client,message}.py. The
// ledger engine never depends on this package for correctness - it only
// publishes committed blocks and accepted transactions for observers.
package broadcast

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/metrics"
)

// MessageKind is the discriminant every wire frame carries, matching the
// `type` field spec.md §6's wire protocol requires.
type MessageKind string

const (
	KindTransaction    MessageKind = "Transaction"
	KindBlockReward    MessageKind = "BlockReward"
	KindBlock          MessageKind = "Block"
	KindSanchainConfig MessageKind = "SanchainConfig"
	KindUTXO           MessageKind = "UTXO"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans every published message out to every connected peer, the Go
// equivalent of host.py's global `clients` list and rebroadcast loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	zstdEnc *zstd.Encoder
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	return &Hub{clients: make(map[*client]struct{}), zstdEnc: enc}
}

// Stop closes every connected client. The listener itself belongs to
// whatever *http.Server mounts ServeHTTP - the API server, per
// spec.md §6.3 - so there is nothing else here to close.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
	}
	h.clients = make(map[*client]struct{})
	metrics.BroadcastClientsConnected.Set(0)
}

// ServeHTTP upgrades the request to a websocket and joins it to the fan-out
// set. The API server mounts this directly on its own mux at GET /ws
// rather than running a second listener.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handleWS(w, r)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[broadcast] upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, consts.BroadcastSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.BroadcastClientsConnected.Inc()
	log.Printf("[broadcast] %s connected", conn.RemoteAddr())

	go h.writePump(c)
	h.readPump(c)
}

// readPump reads every message a peer sends and republishes it to every
// other connected peer - host.py's "for client in clients: await
// client.send(message)" loop.
func (h *Hub) readPump(c *client) {
	defer h.disconnect(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.publish(data, c)
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(consts.BroadcastWriteTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) disconnect(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.BroadcastClientsConnected.Dec()
	}
	h.mu.Unlock()
	c.conn.Close()
	log.Printf("[broadcast] %s disconnected", c.conn.RemoteAddr())
}

// Publish compresses payload and fans it out to every connected client.
// It is the entry point the ledger's API/mining loop calls after
// accepting a transaction or committing a block.
func (h *Hub) Publish(payload []byte) {
	h.publish(payload, nil)
}

func (h *Hub) publish(payload []byte, except *client) {
	compressed := h.zstdEnc.EncodeAll(payload, nil)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c == except {
			continue
		}
		select {
		case c.send <- compressed:
		default:
			// slow consumer - drop rather than block the hub
		}
	}
}
