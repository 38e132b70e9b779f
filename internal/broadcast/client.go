package broadcast

import (
	"fmt"
	"log"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
)

// Client connects to a remote Hub and decodes whatever it republishes -
// the Go equivalent of client.py's Client.connect/listen_and_record, for
// a node that wants to observe another node's committed blocks and
// accepted transactions.
type Client struct {
	conn    *websocket.Conn
	zstdDec *zstd.Decoder
}

// Dial connects to a Hub listening at addr (host:port, no scheme).
func Dial(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", addr), nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, zstdDec: dec}, nil
}

// Close disconnects from the hub.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Listen blocks, invoking onMessage for every decoded envelope received,
// until the connection closes or onMessage returns an error.
func (c *Client) Listen(onMessage func(Envelope) error) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		plain, err := c.zstdDec.DecodeAll(data, nil)
		if err != nil {
			log.Printf("[broadcast] client: bad frame: %v", err)
			continue
		}
		env, err := Decode(plain)
		if err != nil {
			log.Printf("[broadcast] client: bad envelope: %v", err)
			continue
		}
		if err := onMessage(env); err != nil {
			return err
		}
	}
}
