package discord

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"
)

// applyProxy routes REST and gateway traffic of s through raw. Supported
// schemes are http, https, socks5 and socks4.
func applyProxy(s *discordgo.Session, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid proxy %q: %w", raw, err)
	}

	timeout := 20 * time.Second
	if s.Client != nil && s.Client.Timeout > 0 {
		timeout = s.Client.Timeout
	}

	var gw websocket.Dialer
	if s.Dialer != nil {
		gw = *s.Dialer
	}
	switch u.Scheme {
	case "http", "https":
		s.Client = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(u)},
		}
		gw.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h", "socks4":
		d, err := proxy.FromURL(u, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("proxy dialer: %w", err)
		}
		dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := d.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return d.Dial(network, addr)
		}
		s.Client = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{DialContext: dial},
		}
		gw.Proxy = nil
		gw.NetDialContext = dial
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	s.Dialer = &gw
	return nil
}
