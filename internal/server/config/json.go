package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gowallet/internal/flagx"
	"github.com/dmitrijs2005/gowallet/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr"`
	StorageKind                  string         `json:"storage_kind"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	BlacklistFallbackTTL         timex.Duration `json:"blacklist_fallback_ttl"`
	BlacklistCheckTimeout        timex.Duration `json:"blacklist_check_timeout"`
	LockWaitTimeout              timex.Duration `json:"lock_wait_timeout"`
	CleanupSchedule              string         `json:"cleanup_schedule"`
	DeepCleanupSchedule          string         `json:"deep_cleanup_schedule"`
	PurgeBatchSize               int            `json:"purge_batch_size"`
	LoginRatePerMinute           int            `json:"login_rate_per_minute"`
	LoginBurst                   int            `json:"login_burst"`
	DefaultCurrency              string         `json:"default_currency"`
	LogLevel                     string         `json:"log_level"`
	AdminEmail                   string         `json:"admin_email"`
	AdminPassword                string         `json:"admin_password"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// Without that flag nothing is loaded. An unreadable file or invalid JSON
// panics, matching the flag parser.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.StorageKind, c.StorageKind)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setPositive(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setPositive(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration.Duration)
	setPositive(&config.BlacklistFallbackTTL, c.BlacklistFallbackTTL.Duration)
	setPositive(&config.BlacklistCheckTimeout, c.BlacklistCheckTimeout.Duration)
	setPositive(&config.LockWaitTimeout, c.LockWaitTimeout.Duration)
	setString(&config.CleanupSchedule, c.CleanupSchedule)
	setString(&config.DeepCleanupSchedule, c.DeepCleanupSchedule)
	setPositive(&config.PurgeBatchSize, c.PurgeBatchSize)
	setPositive(&config.LoginRatePerMinute, c.LoginRatePerMinute)
	setPositive(&config.LoginBurst, c.LoginBurst)
	setString(&config.DefaultCurrency, c.DefaultCurrency)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPositive[T ~int | ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
