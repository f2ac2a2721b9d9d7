package cfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName               = "mailsync"
	DefaultConnectTimeout = 15 * time.Second
	DefaultArchiveWorkers = 3
)

type Config struct {
	Accounts       map[string]Account `yaml:"accounts"`
	Storage        Storage            `yaml:"storage"`
	Archive        Archive            `yaml:"archive"`
	ConnectTimeout time.Duration      `yaml:"connectTimeout"`
}

type Storage struct {
	// Root of the local message store
	Root string `yaml:"root"`
	// Cache is the header cache database file
	Cache string `yaml:"cache"`
}

type Archive struct {
	Workers int `yaml:"workers"`
	// Rate is the maximum number of messages started per second (0 = unlimited)
	Rate float64 `yaml:"rate"`
}

func newConfig() *Config {
	return &Config{
		Accounts: make(map[string]Account),
	}
}

// LoadFromFile loads the configuration from the file
func LoadFromFile(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	return Load(file)
}

// Load the configuration from a io.ReadCloser
func Load(reader io.ReadCloser) (*Config, error) {
	defer reader.Close()
	decoder := yaml.NewDecoder(reader)
	config := newConfig()
	err := decoder.Decode(config)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err := validateConfiguration(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfiguration(config *Config) error {
	if config.Accounts == nil {
		config.Accounts = make(map[string]Account)
	}
	for name, account := range config.Accounts {
		if account.Address == "" {
			return fmt.Errorf("account %q: missing address", name)
		}
		if account.IMAP.Host == "" {
			return fmt.Errorf("account %q: missing IMAP host", name)
		}
		switch account.AuthType {
		case "":
			account.AuthType = AuthPassword
		case AuthPassword, AuthOAuth2:
		default:
			return fmt.Errorf("account %q: unknown authentication type %q", name, account.AuthType)
		}
		account.Name = name
		config.Accounts[name] = account
	}
	if config.Storage.Root == "" {
		config.Storage.Root = filepath.Join(xdg.DataHome, appName, "store")
	}
	if config.Storage.Cache == "" {
		config.Storage.Cache = filepath.Join(xdg.CacheHome, appName, "headers.db")
	}
	if config.Archive.Workers <= 0 {
		config.Archive.Workers = DefaultArchiveWorkers
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	return nil
}
