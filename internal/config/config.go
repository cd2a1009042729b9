package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/ArkLabsHQ/settler/internal/core/application"
	"github.com/ArkLabsHQ/settler/utils"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir            string
	LogLevel           uint32
	DbType             string
	LedgerURLs         []string
	LedgerRateLimit    int
	FaucetURL          string
	FaucetAmount       uint64
	Depth              int
	MinWeightMagnitude int
	Security           int
	PollInterval       time.Duration
	PollMaxAttempts    int
	PollTimeout        time.Duration
	SettlementInterval time.Duration
	BootstrapWallet    bool
	MetricsPort        uint32
}

var (
	Datadir            = "DATADIR"
	LogLevel           = "LOG_LEVEL"
	DbType             = "DB_TYPE"
	LedgerURLs         = "LEDGER_URLS"
	LedgerRateLimit    = "LEDGER_RATE_LIMIT"
	FaucetURL          = "FAUCET_URL"
	FaucetAmount       = "FAUCET_AMOUNT"
	Depth              = "DEPTH"
	MinWeightMagnitude = "MIN_WEIGHT_MAGNITUDE"
	Security           = "SECURITY"
	PollInterval       = "POLL_INTERVAL"
	PollMaxAttempts    = "POLL_MAX_ATTEMPTS"
	PollTimeout        = "POLL_TIMEOUT"
	SettlementInterval = "SETTLEMENT_INTERVAL"
	BootstrapWallet    = "BOOTSTRAP_WALLET"
	MetricsPort        = "METRICS_PORT"

	defaultDatadir            = appDatadir("settler", false)
	defaultLogLevel           = 4
	defaultDbType             = "badger"
	defaultLedgerRateLimit    = 10
	defaultFaucetAmount       = 1000
	defaultDepth              = 3
	defaultMinWeightMagnitude = 9
	defaultSecurity           = 2
	defaultPollInterval       = 5 * time.Second
	defaultPollMaxAttempts    = 40
	defaultPollTimeout        = time.Duration(0)
	defaultSettlementInterval = time.Minute
	defaultBootstrapWallet    = false
	defaultMetricsPort        = 0

	supportedDbTypes = map[string]struct{}{
		"badger": {},
		"sqlite": {},
	}
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("SETTLER")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(LedgerRateLimit, defaultLedgerRateLimit)
	viper.SetDefault(FaucetAmount, defaultFaucetAmount)
	viper.SetDefault(Depth, defaultDepth)
	viper.SetDefault(MinWeightMagnitude, defaultMinWeightMagnitude)
	viper.SetDefault(Security, defaultSecurity)
	viper.SetDefault(PollInterval, defaultPollInterval)
	viper.SetDefault(PollMaxAttempts, defaultPollMaxAttempts)
	viper.SetDefault(PollTimeout, defaultPollTimeout)
	viper.SetDefault(SettlementInterval, defaultSettlementInterval)
	viper.SetDefault(BootstrapWallet, defaultBootstrapWallet)
	viper.SetDefault(MetricsPort, defaultMetricsPort)

	config := &Config{
		Datadir:            cleanAndExpandPath(viper.GetString(Datadir)),
		LogLevel:           viper.GetUint32(LogLevel),
		DbType:             viper.GetString(DbType),
		LedgerURLs:         parseList(viper.GetString(LedgerURLs)),
		LedgerRateLimit:    viper.GetInt(LedgerRateLimit),
		FaucetURL:          viper.GetString(FaucetURL),
		FaucetAmount:       viper.GetUint64(FaucetAmount),
		Depth:              viper.GetInt(Depth),
		MinWeightMagnitude: viper.GetInt(MinWeightMagnitude),
		Security:           viper.GetInt(Security),
		PollInterval:       viper.GetDuration(PollInterval),
		PollMaxAttempts:    viper.GetInt(PollMaxAttempts),
		PollTimeout:        viper.GetDuration(PollTimeout),
		SettlementInterval: viper.GetDuration(SettlementInterval),
		BootstrapWallet:    viper.GetBool(BootstrapWallet),
		MetricsPort:        viper.GetUint32(MetricsPort),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := makeDirectoryIfNotExists(config.Datadir); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if _, ok := supportedDbTypes[c.DbType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DbType)
	}
	if len(c.LedgerURLs) <= 0 {
		return fmt.Errorf("missing ledger url")
	}
	for _, u := range c.LedgerURLs {
		if !utils.IsValidURL(u) {
			return fmt.Errorf("invalid ledger url %q", u)
		}
	}
	if !utils.IsValidURL(c.FaucetURL) {
		return fmt.Errorf("invalid faucet url %q", c.FaucetURL)
	}
	if c.LedgerRateLimit < 0 {
		return fmt.Errorf("ledger rate limit must not be negative")
	}
	if c.SettlementInterval <= 0 {
		return fmt.Errorf("settlement interval must be greater than 0")
	}
	return c.AppConfig().Validate()
}

// AppConfig returns the settlement parameters the engine is built with.
func (c *Config) AppConfig() application.Config {
	return application.Config{
		Depth:              c.Depth,
		MinWeightMagnitude: c.MinWeightMagnitude,
		Security:           c.Security,
		FaucetAmount:       c.FaucetAmount,
		PollInterval:       c.PollInterval,
		PollMaxAttempts:    c.PollMaxAttempts,
		PollTimeout:        c.PollTimeout,
	}
}

// parseList splits a comma separated env value, dropping empty items.
func parseList(value string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); len(item) > 0 {
			list = append(list, item)
		}
	}
	return list
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// appDataDir returns an operating system specific directory to be used for
// storing application data for an application.  See AppDataDir for more
// details.  This unexported version takes an operating system argument
// primarily to enable the testing package to properly test the function by
// forcing an operating system that is not the currently one.
func appDatadir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	// The caller really shouldn't prepend the appName with a period, but
	// if they do, handle it gracefully by trimming it.
	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]

	// Get the OS specific home directory via the Go standard lib.
	var homeDir string
	usr, err := user.Current()
	if err == nil {
		homeDir = usr.HomeDir
	}

	// Fall back to standard HOME environment variable that works
	// for most POSIX OSes if the directory from the Go standard
	// lib failed.
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}

	goos := runtime.GOOS
	switch goos {
	// Attempt to use the LOCALAPPDATA or APPDATA environment variable on
	// Windows.
	case "windows":
		// Windows XP and before didn't have a LOCALAPPDATA, so fallback
		// to regular APPDATA when LOCALAPPDATA is not set.
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}

		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}

	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library",
				"Application Support", appNameUpper)
		}

	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}

	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}

	// Fall back to the current directory if all else fails.
	return "."
}

func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
