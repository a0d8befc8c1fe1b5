// Package endpoint turns the user's "host[:port]" input into a
// validated chat server address.
package endpoint

import (
	"net"
	"strconv"
	"strings"

	"paizer/config"
	ncerr "paizer/internal/errors"
)

// Endpoint is a resolved chat server address.  It is created once per
// session and never modified.
type Endpoint struct {
	Host string
	Port int
}

// String returns "host:port".
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Parse accepts "host" or "host:port".  A missing port defaults to
// [config.DefaultPort].  Input with more than one colon has no single
// port and is rejected as InvalidPort.
func Parse(input string) (Endpoint, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Endpoint{}, ncerr.Invalid(ncerr.InvalidHost, "host", "")
	}

	host, port := s, config.DefaultPort
	switch strings.Count(s, ":") {
	case 0:
	case 1:
		var portStr string
		host, portStr, _ = strings.Cut(s, ":")
		p, err := parsePort(portStr)
		if err != nil {
			return Endpoint{}, err
		}
		port = p
	default:
		return Endpoint{}, ncerr.Invalid(ncerr.InvalidPort, "port", s)
	}

	host = strings.TrimSpace(host)
	if host == "" {
		return Endpoint{}, ncerr.Invalid(ncerr.InvalidHost, "host", "")
	}
	return Endpoint{Host: host, Port: port}, nil
}

func parsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ncerr.Invalid(ncerr.InvalidPort, "port", "")
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return 0, ncerr.Invalid(ncerr.InvalidPort, "port", s)
	}
	return p, nil
}
