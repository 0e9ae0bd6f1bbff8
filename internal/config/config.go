package config

import (
	"fmt"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Measurement MeasurementConfig `mapstructure:"measurement"`
	Poller      PollerConfig      `mapstructure:"poller"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type MeasurementConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollerConfig sets the refresh cadence per widget type. Graphs poll
// faster than scalar tiles.
type PollerConfig struct {
	DefaultInterval  time.Duration `mapstructure:"default_interval"`
	GraphInterval    time.Duration `mapstructure:"graph_interval"`
	DatagridInterval time.Duration `mapstructure:"datagrid_interval"`
	SeriesWindow     time.Duration `mapstructure:"series_window"`
	SeriesMaxPoints  int           `mapstructure:"series_max_points"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Defaults setzen
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("measurement.base_url", "http://localhost:9090")
	viper.SetDefault("measurement.timeout", "5s")
	viper.SetDefault("poller.default_interval", "10s")
	viper.SetDefault("poller.graph_interval", "2s")
	viper.SetDefault("poller.datagrid_interval", "5s")
	viper.SetDefault("poller.series_window", "1h")
	viper.SetDefault("poller.series_max_points", 500)

	// Environment Variables automatisch binden (Viper Feature)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("OPC") // Environment Variables mit Prefix OPC_

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// IntervalFor returns the poll cadence for a widget type.
func (p *PollerConfig) IntervalFor(t types.WidgetType) time.Duration {
	switch t {
	case types.WidgetTypeGraph:
		return p.GraphInterval
	case types.WidgetTypeDatagrid:
		return p.DatagridInterval
	case types.WidgetTypeNumber, types.WidgetTypeText,
		types.WidgetTypeGauge, types.WidgetTypeImage:
		return p.DefaultInterval
	}
	return p.DefaultInterval
}
