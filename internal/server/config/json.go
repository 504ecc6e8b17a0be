package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mbazhenov/authkeeper/internal/flagx"
	"github.com/mbazhenov/authkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for lifetime fields, which allows parsing both
// string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	ClientURL                    string         `json:"client_url"`
	ActivationBaseURL            string         `json:"activation_base_url"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	PasswordHashCost             int            `json:"password_hash_cost"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUsername                 string         `json:"smtp_username"`
	SMTPPassword                 string         `json:"smtp_password"`
	SMTPFrom                     string         `json:"smtp_from"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.ClientURL = c.ClientURL
	config.ActivationBaseURL = c.ActivationBaseURL
	config.AccessTokenSecret = c.AccessTokenSecret
	config.RefreshTokenSecret = c.RefreshTokenSecret
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.PasswordHashCost = c.PasswordHashCost
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.SMTPFrom = c.SMTPFrom
}
