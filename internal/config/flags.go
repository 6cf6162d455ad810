package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress is a "host:port" flag value.
type NetAddress struct {
	Host string
	Port int
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ";")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// parseFlags parses args into a partial [StructuredConfig]. Both binaries
// share one flag set; each reads the fields it needs.
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("assembly-sync", flag.ContinueOnError)

	var serverAddress NetAddress
	var serverURL string
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey, tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout, pollInterval time.Duration
	var autoupdatePath, healthPath, authToken string
	var healthInterval, statsInterval time.Duration
	var subscriptions stringList

	fs.Var(&serverAddress, "a", "Listen address host:port of the server")
	fs.StringVar(&serverURL, "u", "", "Autoupdate server base URL")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Datastore poll interval of open streams")
	fs.StringVar(&autoupdatePath, "autoupdate-path", "", "Path of the autoupdate endpoint")
	fs.StringVar(&healthPath, "health-path", "", "Path of the health endpoint")
	fs.StringVar(&authToken, "auth-token", "", "Bearer token sent with stream requests")
	fs.DurationVar(&healthInterval, "health-interval", 0, "Health poll interval while offline")
	fs.DurationVar(&statsInterval, "stats-interval", 0, "Stats logging interval")
	fs.Var(&subscriptions, "s", "Subscription collection:id,id[@fieldset] (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
			PollInterval:   pollInterval,
		},
		Adapter: Adapter{
			HTTPAddress:    serverURL,
			AutoupdatePath: autoupdatePath,
			HealthPath:     healthPath,
			RequestTimeout: requestTimeout,
			AuthToken:      authToken,
		},
		Workers: Workers{
			HealthInterval: healthInterval,
			StatsInterval:  statsInterval,
		},
		Subscriptions: subscriptions,
		JSONFilePath:  jsonConfigPath,
	}, nil
}

func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

func (a *NetAddress) Set(s string) error {
	host, portString, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
