package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// LoadConfig returns the reference configuration overlaid with whatever
	// the source sets. It does not validate the result.
	LoadConfig() (*Config, error)

	IsReadOnly() bool
	Close() error
}
