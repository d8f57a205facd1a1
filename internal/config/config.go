package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Supported driver identifiers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Connection represents a saved database connection profile.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Server   string `mapstructure:"server" yaml:"server"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database"`
	Trusted  bool   `mapstructure:"trusted" yaml:"trusted"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme             string        `mapstructure:"theme" yaml:"theme"`
	DefaultConnection string        `mapstructure:"default_connection" yaml:"default_connection"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	AtomicMutations   bool          `mapstructure:"atomic_mutations" yaml:"atomic_mutations"`
	Debug             bool          `mapstructure:"debug" yaml:"debug"`
}

// DefaultQueryTimeout bounds a single catalog execution.
const DefaultQueryTimeout = 30 * time.Second

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Preferences: Preferences{
			Theme:           "default",
			QueryTimeout:    DefaultQueryTimeout,
			AtomicMutations: true,
		},
	}
}

// NewTrusted builds a profile that authenticates with the operating-system identity.
func NewTrusted(server, database string) Connection {
	c := Connection{
		Driver:   DriverSQLServer,
		Server:   strings.TrimSpace(server),
		Database: strings.TrimSpace(database),
		Trusted:  true,
	}
	c.Name = c.defaultName()
	return c
}

// DriverName returns the driver identifier, defaulting to SQL Server.
func (c Connection) DriverName() string {
	if c.Driver == "" {
		return DriverSQLServer
	}
	return strings.ToLower(c.Driver)
}

// Validate checks that the profile can produce a connection string.
func (c Connection) Validate() error {
	switch c.DriverName() {
	case DriverSQLServer, DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver: %q", c.Driver)
	}
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("server is required")
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is invalid", c.Port)
	}
	if !c.Trusted && c.Username == "" {
		return fmt.Errorf("username is required unless trusted authentication is used")
	}
	return nil
}

// DSN builds the driver connection string for the profile.
func (c Connection) DSN() string {
	if c.DriverName() == DriverPostgres {
		return c.postgresDSN()
	}
	return c.sqlServerDSN()
}

// sqlServerDSN uses the ODBC keyword form accepted by go-mssqldb. Trusted profiles
// carry no user and name the platform's integrated authenticator, if it needs one.
func (c Connection) sqlServerDSN() string {
	parts := []string{
		"server=" + odbcValue(c.Server),
		"database=" + odbcValue(c.Database),
	}
	if c.Port > 0 && !strings.Contains(c.Server, `\`) {
		parts = append(parts, "port="+strconv.Itoa(c.Port))
	}
	if c.Trusted {
		if trustedAuthenticator != "" {
			parts = append(parts, "authenticator="+trustedAuthenticator)
		}
	} else {
		parts = append(parts, "user id="+odbcValue(c.Username))
		if c.Password != "" {
			parts = append(parts, "password="+odbcValue(c.Password))
		}
	}
	return "odbc:" + strings.Join(parts, ";")
}

func (c Connection) postgresDSN() string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   c.Server,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// odbcValue braces a value when it contains characters that end an ODBC keyword pair.
func odbcValue(v string) string {
	if !strings.ContainsAny(v, ";{}= ") {
		return v
	}
	return "{" + strings.ReplaceAll(v, "}", "}}") + "}"
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Server
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	switch {
	case c.Trusted:
		s += " (trusted)"
	case c.Username != "":
		s = c.Username + "@" + s
	}
	return s
}

func (c Connection) defaultName() string {
	return fmt.Sprintf("%s-%s-%s", c.DriverName(), sanitizeName(c.Server), sanitizeName(c.Database))
}

func sanitizeName(s string) string {
	return strings.NewReplacer(`\`, "_", "/", "_", " ", "_").Replace(s)
}

// ParseDSN parses a connection string into a Connection.
// Both the postgresql:// URL form and the SQL Server odbc: keyword form are accepted.
func ParseDSN(dsn string) (Connection, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return parsePostgresDSN(dsn)
	case strings.HasPrefix(strings.ToLower(dsn), "odbc:"):
		return parseODBCDSN(dsn[len("odbc:"):])
	default:
		return Connection{}, fmt.Errorf("invalid DSN: unsupported format")
	}
}

func parsePostgresDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}

	conn := Connection{
		Driver:   DriverPostgres,
		Server:   u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Server, conn.Port, conn.Database)
	return conn, nil
}

func parseODBCDSN(s string) (Connection, error) {
	conn := Connection{Driver: DriverSQLServer}
	for _, pair := range splitODBC(s) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value = unbrace(strings.TrimSpace(value))
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "server", "data source", "address":
			host, port, found := strings.Cut(value, ",")
			conn.Server = host
			if found {
				conn.Port, _ = strconv.Atoi(port)
			}
		case "port":
			conn.Port, _ = strconv.Atoi(value)
		case "database", "initial catalog":
			conn.Database = value
		case "trusted_connection", "integrated security":
			v := strings.ToLower(value)
			conn.Trusted = v == "yes" || v == "true" || v == "sspi"
		case "user id", "uid", "user":
			conn.Username = value
		case "password", "pwd":
			conn.Password = value
		}
	}
	if conn.Server == "" {
		return Connection{}, fmt.Errorf("invalid DSN: server is missing")
	}
	if conn.Username == "" {
		conn.Trusted = true
	}
	conn.Name = conn.defaultName()
	return conn, nil
}

// splitODBC splits on semicolons outside braces.
func splitODBC(s string) []string {
	var parts []string
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == ';' && depth == 0:
			parts = append(parts, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

func unbrace(v string) string {
	if len(v) >= 2 && v[0] == '{' && v[len(v)-1] == '}' {
		return strings.ReplaceAll(v[1:len(v)-1], "}}", "}")
	}
	return v
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}

// FindConnection returns the profile with the given name.
func (cfg *Config) FindConnection(name string) (Connection, bool) {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}
