package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the service configuration file.
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	KeyGen   *KeyGen   `json:"keygen"`
	Geo      *Geo      `json:"geo"`
	Metadata *Metadata `json:"metadata"`
	Redirect *Redirect `json:"redirect"`
}

type Server struct {
	HTTP           *Server_HTTP `json:"http"`
	GRPC           *Server_GRPC `json:"grpc"`
	BaseURL        string       `json:"base_url"`
	RateLimit      int          `json:"rate_limit"`
	IdentityHeader string       `json:"identity_header"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Server_GRPC struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

type Data_Database struct {
	// Driver is one of memory, sqlite3 or postgres.
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Data_Redis struct {
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	DB           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	CacheTTL     Duration `json:"cache_ttl"`
}

type KeyGen struct {
	Alphabet    string `json:"alphabet"`
	Length      int    `json:"length"`
	MaxAttempts int    `json:"max_attempts"`
}

type Geo struct {
	// Provider is one of none, http or maxmind.
	Provider  string   `json:"provider"`
	Endpoint  string   `json:"endpoint"`
	APIKey    string   `json:"api_key"`
	MaxMindDB string   `json:"maxmind_db"`
	Timeout   Duration `json:"timeout"`
}

type Metadata struct {
	Enabled      bool     `json:"enabled"`
	Timeout      Duration `json:"timeout"`
	MaxBodyBytes int64    `json:"max_body_bytes"`
}

type Redirect struct {
	RecordTimeout Duration `json:"record_timeout"`
}

const (
	DefaultAlphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	DefaultKeyLength      = 7
	DefaultMaxAttempts    = 5
	DefaultIdentityHeader = "X-User-ID"
)

// Defaults fills every unset section and field with its default value.
func (b *Bootstrap) Defaults() {
	if b.Server == nil {
		b.Server = &Server{}
	}
	if b.Server.HTTP == nil {
		b.Server.HTTP = &Server_HTTP{}
	}
	if b.Server.GRPC == nil {
		b.Server.GRPC = &Server_GRPC{}
	}
	if b.Server.IdentityHeader == "" {
		b.Server.IdentityHeader = DefaultIdentityHeader
	}
	if b.Data == nil {
		b.Data = &Data{}
	}
	if b.Data.Database == nil {
		b.Data.Database = &Data_Database{}
	}
	if b.Data.Database.Driver == "" {
		b.Data.Database.Driver = "memory"
	}
	if b.Data.Redis == nil {
		b.Data.Redis = &Data_Redis{}
	}
	if b.Data.Redis.CacheTTL.Duration == 0 {
		b.Data.Redis.CacheTTL = Duration{10 * time.Minute}
	}
	if b.KeyGen == nil {
		b.KeyGen = &KeyGen{}
	}
	if b.KeyGen.Alphabet == "" {
		b.KeyGen.Alphabet = DefaultAlphabet
	}
	if b.KeyGen.Length <= 0 {
		b.KeyGen.Length = DefaultKeyLength
	}
	if b.KeyGen.MaxAttempts <= 0 {
		b.KeyGen.MaxAttempts = DefaultMaxAttempts
	}
	if b.Geo == nil {
		b.Geo = &Geo{}
	}
	if b.Geo.Provider == "" {
		b.Geo.Provider = "none"
	}
	if b.Geo.Timeout.Duration == 0 {
		b.Geo.Timeout = Duration{time.Second}
	}
	if b.Metadata == nil {
		b.Metadata = &Metadata{}
	}
	if b.Metadata.Timeout.Duration == 0 {
		b.Metadata.Timeout = Duration{3 * time.Second}
	}
	if b.Metadata.MaxBodyBytes <= 0 {
		b.Metadata.MaxBodyBytes = 1 << 20
	}
	if b.Redirect == nil {
		b.Redirect = &Redirect{}
	}
	if b.Redirect.RecordTimeout.Duration == 0 {
		b.Redirect.RecordTimeout = Duration{5 * time.Second}
	}
}

// Duration decodes either a duration string ("1.5s") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}
