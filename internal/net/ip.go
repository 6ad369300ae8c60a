// Package net connects a participant to the relay and helps participants
// find each other on the local network.
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	pkglog "SharedBoard/internal/log"
)

// LinkScheme prefixes share links handed from the host to joiners.
const LinkScheme = "sharedboard"

// ErrBadLink is returned by ParseLink.
var ErrBadLink = errors.New("net: invalid share link")

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; look at the interfaces instead.
		return localIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// localIPFallback is used on networks without internet access.
func localIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	l := pkglog.L()
	l.Warn().Msg("no suitable local IP found, falling back to loopback")
	return "127.0.0.1", nil
}

// ShareLink formats the link a host gives to joiners.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s://%s", LinkScheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// ParseLink accepts a share link or a bare host:port and returns host:port.
func ParseLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	addr := link
	if strings.Contains(link, "://") {
		u, err := url.Parse(link)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadLink, err)
		}
		if u.Scheme != LinkScheme {
			return "", fmt.Errorf("%w: unexpected scheme %q", ErrBadLink, u.Scheme)
		}
		addr = u.Host
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadLink, link)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("%w: bad port %q", ErrBadLink, port)
	}
	return addr, nil
}

// RelayURL is the websocket endpoint of a relay at host:port.
func RelayURL(addr string) string {
	return (&url.URL{Scheme: "ws", Host: addr, Path: "/ws"}).String()
}
