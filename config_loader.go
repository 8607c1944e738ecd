package goSession

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GOSESSION_SESSION_BACKEND.
const EnvPrefix = "GOSESSION"

// LoadConfig reads configuration with this priority, highest first:
//
//  1. Environment variables with the GOSESSION_ prefix
//  2. The file at path (any format viper understands); a missing file is an
//     error when path is set
//  3. [DefaultConfig]
//
// The result is validated.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Session: SessionConfig{
			Backend:    v.GetString("session.backend"),
			ProfileKey: v.GetString("session.profile_key"),
			TokenKey:   v.GetString("session.token_key"),
			KeyPrefix:  v.GetString("session.key_prefix"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("sqlite.path"),
		},
		Access: AccessConfig{
			LoginPath: v.GetString("access.login_path"),
			HomePath:  v.GetString("access.home_path"),
			Roles:     v.GetStringSlice("access.roles"),
		},
		Activity: ActivityConfig{
			SlowOperationThreshold: v.GetDuration("activity.slow_operation_threshold"),
		},
		Token: TokenConfig{
			SigningMethod: v.GetString("token.signing_method"),
			VerifyKey:     v.GetString("token.verify_key"),
			Issuer:        v.GetString("token.issuer"),
			Audience:      v.GetString("token.audience"),
			Leeway:        v.GetDuration("token.leeway"),
		},
		Audit: AuditConfig{
			Enabled:      v.GetBool("audit.enabled"),
			BufferSize:   v.GetInt("audit.buffer_size"),
			DropIfFull:   v.GetBool("audit.drop_if_full"),
			DrainTimeout: v.GetDuration("audit.drain_timeout"),
		},
		Metrics: MetricsConfig{
			Enabled:                 v.GetBool("metrics.enabled"),
			EnableLatencyHistograms: v.GetBool("metrics.enable_latency_histograms"),
		},
	}
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Log.Output = v.GetString("log.output")
	cfg.Log.TimeFormat = v.GetString("log.time_format")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.profile_key", d.Session.ProfileKey)
	v.SetDefault("session.token_key", d.Session.TokenKey)
	v.SetDefault("session.key_prefix", d.Session.KeyPrefix)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("access.login_path", d.Access.LoginPath)
	v.SetDefault("access.home_path", d.Access.HomePath)
	v.SetDefault("access.roles", d.Access.Roles)
	v.SetDefault("activity.slow_operation_threshold", d.Activity.SlowOperationThreshold)
	v.SetDefault("token.signing_method", d.Token.SigningMethod)
	v.SetDefault("token.verify_key", d.Token.VerifyKey)
	v.SetDefault("token.issuer", d.Token.Issuer)
	v.SetDefault("token.audience", d.Token.Audience)
	v.SetDefault("token.leeway", d.Token.Leeway)
	v.SetDefault("audit.enabled", d.Audit.Enabled)
	v.SetDefault("audit.buffer_size", d.Audit.BufferSize)
	v.SetDefault("audit.drop_if_full", d.Audit.DropIfFull)
	v.SetDefault("audit.drain_timeout", d.Audit.DrainTimeout)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.enable_latency_histograms", d.Metrics.EnableLatencyHistograms)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.time_format", d.Log.TimeFormat)
}
