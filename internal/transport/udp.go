// Package transport carries packets between consumer and recognition host
// as UDP datagrams on the loopback interface.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/rbright/voicecmd/internal/packet"
)

const (
	DefaultHost         = "127.0.0.1"
	DefaultConsumerPort = 48285
	DefaultHostPort     = 48286

	maxDatagram = 64 * 1024
)

// ErrNotLoopback rejects addresses the link must never bind or send to.
var ErrNotLoopback = errors.New("address is not loopback")

// Addr joins host and port.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// RequireLoopback validates that host resolves to a loopback address.
func RequireLoopback(host string) error {
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %q", ErrNotLoopback, host)
	}
	return nil
}

// Link is one bound UDP socket with a fixed peer.
type Link struct {
	conn   *net.UDPConn
	peer   *net.UDPAddr
	logger *slog.Logger
}

// Listen binds local and targets peer. Both must be loopback.
func Listen(local, peer string, logger *slog.Logger) (*Link, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	localAddr, err := resolveLoopback(local)
	if err != nil {
		return nil, fmt.Errorf("local address: %w", err)
	}
	peerAddr, err := resolveLoopback(peer)
	if err != nil {
		return nil, fmt.Errorf("peer address: %w", err)
	}

	conn, err := net.ListenUDP("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %s: %w", local, err)
	}
	return &Link{conn: conn, peer: peerAddr, logger: logger}, nil
}

func resolveLoopback(addr string) (*net.UDPAddr, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if err := RequireLoopback(host); err != nil {
		return nil, err
	}
	return net.ResolveUDPAddr("udp", addr)
}

// LocalAddr returns the bound address.
func (l *Link) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Send writes one datagram to the peer. Delivery is best-effort.
func (l *Link) Send(ctx context.Context, p packet.Packet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := l.conn.WriteToUDP(packet.Encode(p), l.peer); err != nil {
		return fmt.Errorf("send %s: %w", p.Type, err)
	}
	return nil
}

// Receive starts the read goroutine. Decoded packets are delivered in
// arrival order; malformed datagrams are logged and dropped. The channel
// closes when ctx ends or the link is closed.
func (l *Link) Receive(ctx context.Context, buffer int) <-chan packet.Packet {
	out := make(chan packet.Packet, buffer)

	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	go func() {
		defer close(out)
		buf := make([]byte, maxDatagram)
		for {
			n, from, err := l.conn.ReadFromUDP(buf)
			if err != nil {
				if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
					return
				}
				l.logger.Warn("udp read failed", "error", err.Error())
				continue
			}

			p, err := packet.Decode(buf[:n])
			if err != nil {
				l.logger.Warn("dropping malformed datagram", "from", from.String(), "error", err.Error())
				continue
			}

			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Close releases the socket.
func (l *Link) Close() error {
	return l.conn.Close()
}
