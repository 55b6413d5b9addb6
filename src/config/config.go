package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Sync            SyncConfig           `mapstructure:"sync"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	MFAPI MFAPIConfig `mapstructure:"mfapi"`
}

type MFAPIConfig struct {
	BaseURL        string `mapstructure:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// SyncConfig holds the cron cadences and query limits for the NAV sync
// worker. Zero values fall back to the defaults in the worker package.
type SyncConfig struct {
	MetadataCron     string `mapstructure:"metadataCron"`
	ActiveCron       string `mapstructure:"activeCron"`
	FullUniverseCron string `mapstructure:"fullUniverseCron"`

	RecentWindowHours int `mapstructure:"recentWindowHours"`
	RecentLimit       int `mapstructure:"recentLimit"`
	StaleAfterDays    int `mapstructure:"staleAfterDays"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
