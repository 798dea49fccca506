// Package conf resolves tklbam's configurable options with the precedence
// command line > configuration file > built-in default, via viper.
package conf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jeff-dagenais/tklbam/src/chain"
)

// Built-in defaults and canonical paths.
const (
	DefaultConfDir     = "/etc/tklbam"
	DefaultRegistryDir = "/var/lib/tklbam"
	DefaultLogfile     = "/var/log/tklbam-backup"
	DefaultLockfile    = "/var/run/tklbam-backup.lock"

	DefaultVolsize           = 50 // MB
	DefaultFullBackup        = "1M"
	DefaultS3ParallelUploads = 1
)

// Conf holds the options that affect a backup run.
type Conf struct {
	// FullBackup is the full-session frequency, format <int>[HDWM].
	FullBackup string

	// Volsize is the backup volume size in MB, handed to the transport.
	Volsize int

	// S3ParallelUploads is the number of parallel volume chunk uploads.
	S3ParallelUploads int

	// Overrides is the path of the override list file.
	Overrides string

	// Registry is the local state directory.
	Registry string

	// Address is the backup target address; empty means the address is
	// obtained from the hub.
	Address string

	// HubURL overrides the hub API endpoint; empty means the built-in
	// default. HubAPIKey is the subscription API key.
	HubURL    string
	HubAPIKey string

	SkipFiles    bool
	SkipDatabase bool
	SkipPackages bool
	Simulate     bool
}

// New returns a viper instance preloaded with the built-in defaults and
// pointed at the configuration file directory.
func New(confDir string) *viper.Viper {
	if confDir == "" {
		confDir = DefaultConfDir
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("yaml")
	v.AddConfigPath(confDir)

	v.SetDefault("conf-dir", confDir)
	v.SetDefault("full-backup", DefaultFullBackup)
	v.SetDefault("volsize", DefaultVolsize)
	v.SetDefault("s3-parallel-uploads", DefaultS3ParallelUploads)
	v.SetDefault("overrides", confDir+"/overrides")
	v.SetDefault("registry", DefaultRegistryDir)
	v.SetDefault("address", "")
	v.SetDefault("hub-url", "")
	v.SetDefault("hub-apikey", "")
	return v
}

// Load reads the configuration file (if present) and binds the given
// command-line flag sets over it, then validates the result.
func Load(v *viper.Viper, flagSets ...*pflag.FlagSet) (Conf, error) {
	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Conf{}, fmt.Errorf("read config: %w", err)
		}
	}
	for _, flags := range flagSets {
		if flags == nil {
			continue
		}
		if err := v.BindPFlags(flags); err != nil {
			return Conf{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	c := Conf{
		FullBackup:        v.GetString("full-backup"),
		Volsize:           v.GetInt("volsize"),
		S3ParallelUploads: v.GetInt("s3-parallel-uploads"),
		Overrides:         v.GetString("overrides"),
		Registry:          v.GetString("registry"),
		Address:           v.GetString("address"),
		HubURL:            v.GetString("hub-url"),
		HubAPIKey:         v.GetString("hub-apikey"),
		SkipFiles:         v.GetBool("skip-files"),
		SkipDatabase:      v.GetBool("skip-database"),
		SkipPackages:      v.GetBool("skip-packages"),
		Simulate:          v.GetBool("simulate"),
	}
	if c.Overrides == "" {
		// The flag layer can shadow the default with an empty string.
		c.Overrides = filepath.Join(v.GetString("conf-dir"), "overrides")
	}
	if _, err := ParseFrequency(c.FullBackup); err != nil {
		return Conf{}, err
	}
	if c.Volsize <= 0 {
		return Conf{}, fmt.Errorf("volsize must be positive, got %d", c.Volsize)
	}
	if c.S3ParallelUploads < 1 {
		return Conf{}, fmt.Errorf("s3-parallel-uploads must be at least 1, got %d", c.S3ParallelUploads)
	}
	return c, nil
}

// MaxFullAge returns the full-backup frequency as a duration.
func (c Conf) MaxFullAge() time.Duration {
	d, err := ParseFrequency(c.FullBackup)
	if err != nil {
		// Load validated the value already.
		return chain.DefaultMaxFullAge
	}
	return d
}

// ParseFrequency parses a full-backup frequency of the form <int><unit>
// where unit is H (hours), D (days), W (weeks) or M (months of 30 days):
// "3D" is three days, "2W" two weeks, "1M" one month.
func ParseFrequency(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("bad full-backup frequency %q: expected <int>[HDWM]", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad full-backup frequency %q: expected <int>[HDWM]", s)
	}
	var unit time.Duration
	switch strings.ToUpper(s[len(s)-1:]) {
	case "H":
		unit = time.Hour
	case "D":
		unit = 24 * time.Hour
	case "W":
		unit = 7 * 24 * time.Hour
	case "M":
		unit = 30 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("bad full-backup frequency %q: unknown unit %q", s, s[len(s)-1:])
	}
	return time.Duration(n) * unit, nil
}
