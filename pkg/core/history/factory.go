package history

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ProviderConfig holds the configuration needed to open a history store.
type ProviderConfig struct {
	// Path is the file location for the "file" and "sqlite" providers.
	Path string

	// RedisAddress is the Redis/Valkey server address (e.g., "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int

	// RedisKey is the sorted-set key holding the log. Defaults to "subsubs:history".
	RedisKey string

	// Logger receives diagnostic output. If nil, output is discarded.
	Logger logrus.FieldLogger
}

func (cfg ProviderConfig) logger() logrus.FieldLogger {
	return orDiscard(cfg.Logger)
}

// orDiscard returns logger, or a logger that drops everything when it is nil.
func orDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Provider is a constructor function that opens a Store from config.
type Provider func(cfg ProviderConfig) (Store, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a store provider under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("history: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("history: provider %q already registered", name))
	}
	providers[name] = p
}

// New opens a Store using the named provider.
func New(name string, cfg ProviderConfig) (Store, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("history: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	return p(cfg)
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
