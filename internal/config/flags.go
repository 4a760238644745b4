package config

import (
	"errors"
	"flag"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a listen address in format [host]:[port]
//	-p listen port (same as WA_PORT)
//	-c/-config json file path with configs
//	-client-id session client identifier
//	-session-root session directory root
//	-d event journal DSN
//	-static-dir dashboard assets directory
//	-answer-address answer-generation service base URL
//	-transport-url chat transport bridge websocket URL
//	-relay-address relay base URL used by the dashboard
//	-control-token-key control endpoint token key
//	-log-level minimum log level
//	-request-timeout request timeout (e.g., "30s", "1m")
func parseFlags(args []string) (*StructuredConfig, error) {
	var address NetAddress
	var port int
	var jsonConfigPath string
	var clientID, sessionRoot, databaseDSN, staticDir string
	var answerAddress, transportURL, relayAddress string
	var controlTokenKey, logLevel string
	var requestTimeout time.Duration

	fs := flag.NewFlagSet("wa-relay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.Var(&address, "a", "Net address host:port")
	fs.IntVar(&port, "p", 0, "Listen port")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&clientID, "client-id", "", "Session client identifier")
	fs.StringVar(&sessionRoot, "session-root", "", "Session directory root")
	fs.StringVar(&databaseDSN, "d", "", "Event journal DSN")
	fs.StringVar(&staticDir, "static-dir", "", "Dashboard assets directory")
	fs.StringVar(&answerAddress, "answer-address", "", "Answer service base URL")
	fs.StringVar(&transportURL, "transport-url", "", "Transport bridge websocket URL")
	fs.StringVar(&relayAddress, "relay-address", "", "Relay base URL")
	fs.StringVar(&controlTokenKey, "control-token-key", "", "Control token key")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if address.Port != 0 && port == 0 {
		port = address.Port
	}

	return &StructuredConfig{
		App: App{
			ClientID:        clientID,
			ControlTokenKey: controlTokenKey,
			LogLevel:        logLevel,
		},
		Storage: Storage{
			Session: Session{Root: sessionRoot},
			DB:      DB{DSN: databaseDSN},
		},
		Server: Server{
			Host:           address.Host,
			RequestTimeout: requestTimeout,
			StaticDir:      staticDir,
		},
		Adapter: Adapter{
			AnswerAddress:  answerAddress,
			TransportURL:   transportURL,
			RelayAddress:   relayAddress,
			RequestTimeout: requestTimeout,
		},
		Port:         port,
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host binds all interfaces.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
