package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type HTTP struct {
	Enabled  bool   `koanf:"enabled" json:"enabled,omitempty"`
	BindAddr string `koanf:"bind_addr" json:"bind_addr,omitempty"`
	Port     int    `koanf:"port" json:"port,omitempty"`
}

func (h HTTP) validate() []error {
	if !h.Enabled {
		return nil
	}
	var errs []error
	if h.BindAddr == "" {
		errs = append(errs, errors.New("bind_addr cannot be empty"))
	}
	if h.Port == 0 {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	return errs
}

var httpDefault = HTTP{
	Enabled:  true,
	BindAddr: "0.0.0.0",
	Port:     3000,
}

type Database struct {
	Enabled            bool   `koanf:"enabled" json:"enabled,omitempty"`
	Host               string `koanf:"host" json:"host,omitempty"`
	Port               int    `koanf:"port" json:"port,omitempty"`
	User               string `koanf:"user" json:"user,omitempty"`
	Password           string `koanf:"password" json:"password,omitempty"`
	Database           string `koanf:"database" json:"database,omitempty"`
	SSLMode            string `koanf:"ssl_mode" json:"ssl_mode,omitempty"`
	PingTimeoutSeconds int    `koanf:"ping_timeout_seconds" json:"ping_timeout_seconds,omitempty"`
}

func (d Database) validate() []error {
	if !d.Enabled {
		return nil
	}
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("host cannot be empty"))
	}
	if d.Port == 0 {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("database cannot be empty"))
	}
	if d.PingTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("ping_timeout_seconds must be greater than zero"))
	}
	return errs
}

var databaseDefault = Database{
	Enabled:            true,
	Host:               "localhost",
	Port:               5432,
	User:               "postgres",
	Database:           "postgres",
	SSLMode:            "disable",
	PingTimeoutSeconds: 2,
}

type Valkey struct {
	Enabled            bool   `koanf:"enabled" json:"enabled,omitempty"`
	Host               string `koanf:"host" json:"host,omitempty"`
	Port               int    `koanf:"port" json:"port,omitempty"`
	Username           string `koanf:"username" json:"username,omitempty"`
	Password           string `koanf:"password" json:"password,omitempty"`
	DB                 int    `koanf:"db" json:"db,omitempty"`
	TLS                bool   `koanf:"tls" json:"tls,omitempty"`
	DialTimeoutSeconds int    `koanf:"dial_timeout_seconds" json:"dial_timeout_seconds,omitempty"`
	PingTimeoutSeconds int    `koanf:"ping_timeout_seconds" json:"ping_timeout_seconds,omitempty"`
}

func (v Valkey) validate() []error {
	if !v.Enabled {
		return nil
	}
	var errs []error
	if v.Host == "" {
		errs = append(errs, errors.New("host cannot be empty"))
	}
	if v.Port == 0 {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	if v.PingTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("ping_timeout_seconds must be greater than zero"))
	}
	return errs
}

var valkeyDefault = Valkey{
	Enabled:            true,
	Host:               "localhost",
	Port:               6379,
	DialTimeoutSeconds: 2,
	PingTimeoutSeconds: 2,
}

type MQTT struct {
	Enabled      bool   `koanf:"enabled" json:"enabled,omitempty"`
	BrokerURL    string `koanf:"broker_url" json:"broker_url,omitempty"`
	ClientID     string `koanf:"client_id" json:"client_id,omitempty"`
	Username     string `koanf:"username" json:"username,omitempty"`
	Password     string `koanf:"password" json:"password,omitempty"`
	OnlineTopic  string `koanf:"online_topic" json:"online_topic,omitempty"`
	OfflineTopic string `koanf:"offline_topic" json:"offline_topic,omitempty"`
}

func (m MQTT) validate() []error {
	if !m.Enabled {
		return nil
	}
	var errs []error
	if m.BrokerURL == "" {
		errs = append(errs, errors.New("broker_url cannot be empty"))
	}
	if m.OnlineTopic == "" {
		errs = append(errs, errors.New("online_topic cannot be empty"))
	}
	if m.OfflineTopic == "" {
		errs = append(errs, errors.New("offline_topic cannot be empty"))
	}
	return errs
}

var mqttDefault = MQTT{
	OnlineTopic:  "network_threshold_online",
	OfflineTopic: "network_threshold_offline",
}

type Checks struct {
	CacheTTLMillis   int     `koanf:"cache_ttl_millis" json:"cache_ttl_millis,omitempty"`
	TimeoutSeconds   int     `koanf:"timeout_seconds" json:"timeout_seconds,omitempty"`
	StoragePath      string  `koanf:"storage_path" json:"storage_path,omitempty"`
	StorageThreshold float64 `koanf:"storage_threshold" json:"storage_threshold,omitempty"`
	HeapLimitBytes   uint64  `koanf:"heap_limit_bytes" json:"heap_limit_bytes,omitempty"`
	RSSLimitBytes    uint64  `koanf:"rss_limit_bytes" json:"rss_limit_bytes,omitempty"`
}

func (c Checks) validate() []error {
	var errs []error
	if c.CacheTTLMillis <= 0 {
		errs = append(errs, errors.New("cache_ttl_millis must be greater than zero"))
	}
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("timeout_seconds must be greater than zero"))
	}
	if c.StoragePath == "" {
		errs = append(errs, errors.New("storage_path cannot be empty"))
	}
	if c.StorageThreshold <= 0 || c.StorageThreshold > 1 {
		errs = append(errs, fmt.Errorf("storage_threshold must be in (0,1], got %v", c.StorageThreshold))
	}
	if c.HeapLimitBytes == 0 {
		errs = append(errs, errors.New("heap_limit_bytes must be greater than zero"))
	}
	if c.RSSLimitBytes == 0 {
		errs = append(errs, errors.New("rss_limit_bytes must be greater than zero"))
	}
	return errs
}

var checksDefault = Checks{
	CacheTTLMillis:   1000,
	TimeoutSeconds:   10,
	StoragePath:      "/",
	StorageThreshold: 0.9,
	HeapLimitBytes:   150 * 1024 * 1024,
	RSSLimitBytes:    150 * 1024 * 1024,
}

type Monitor struct {
	Enabled         bool `koanf:"enabled" json:"enabled,omitempty"`
	IntervalSeconds int  `koanf:"interval_seconds" json:"interval_seconds,omitempty"`
}

func (m Monitor) validate() []error {
	if !m.Enabled {
		return nil
	}
	var errs []error
	if m.IntervalSeconds <= 0 {
		errs = append(errs, errors.New("interval_seconds must be greater than zero"))
	}
	return errs
}

var monitorDefault = Monitor{
	Enabled:         true,
	IntervalSeconds: 30,
}

type Config struct {
	Logging  Logging  `koanf:"logging" json:"logging,omitzero"`
	HTTP     HTTP     `koanf:"http" json:"http,omitzero"`
	Database Database `koanf:"database" json:"database,omitzero"`
	Valkey   Valkey   `koanf:"valkey" json:"valkey,omitzero"`
	MQTT     MQTT     `koanf:"mqtt" json:"mqtt,omitzero"`
	Checks   Checks   `koanf:"checks" json:"checks,omitzero"`
	Monitor  Monitor  `koanf:"monitor" json:"monitor,omitzero"`
}

func (c Config) Validate() error {
	var errs []error
	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}
	for _, err := range c.HTTP.validate() {
		errs = append(errs, fmt.Errorf("http.%w", err))
	}
	for _, err := range c.Database.validate() {
		errs = append(errs, fmt.Errorf("database.%w", err))
	}
	for _, err := range c.Valkey.validate() {
		errs = append(errs, fmt.Errorf("valkey.%w", err))
	}
	for _, err := range c.MQTT.validate() {
		errs = append(errs, fmt.Errorf("mqtt.%w", err))
	}
	for _, err := range c.Checks.validate() {
		errs = append(errs, fmt.Errorf("checks.%w", err))
	}
	for _, err := range c.Monitor.validate() {
		errs = append(errs, fmt.Errorf("monitor.%w", err))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Logging:  loggingDefault,
		HTTP:     httpDefault,
		Database: databaseDefault,
		Valkey:   valkeyDefault,
		MQTT:     mqttDefault,
		Checks:   checksDefault,
		Monitor:  monitorDefault,
	}
}

// ConnString builds the postgres connection string for the database
// ping dependency.
func (d Database) ConnString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "postgres://%s@%s:%d/%s", d.User, d.Host, d.Port, d.Database)
	if d.Password != "" {
		b.Reset()
		fmt.Fprintf(&b, "postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Database)
	}
	if d.SSLMode != "" {
		fmt.Fprintf(&b, "?sslmode=%s", d.SSLMode)
	}
	return b.String()
}

// Addr returns the host:port pair for the valkey dependency.
func (v Valkey) Addr() string {
	return fmt.Sprintf("%s:%d", v.Host, v.Port)
}
