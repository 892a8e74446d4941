// Package config 加载 pagekit 命令行与服务的配置。
//
// 配置来源按优先级：环境变量（PAGEKIT_ 前缀，层级以下划线分隔，例如
// PAGEKIT_PAGING_MAX_PAGE_SIZE）> 配置文件 > 默认值。
package config

import (
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pagekit/codegen/snowflake"
	"pagekit/data/db"
	"pagekit/errors"
	"pagekit/logging"
	"pagekit/paging"
	"pagekit/validation"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "PAGEKIT"

// Config 完整配置
type Config struct {
	Database  db.DBConfig
	Paging    *Paging
	Log       *Log
	Snowflake snowflake.Config
}

// Paging 分页相关配置
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
	CountCache      *CountCache
}

// CountCache 总数缓存配置；Backend 为空表示不启用。
type CountCache struct {
	Backend   string // memory | redis
	TTL       time.Duration
	MaxSize   int
	RedisAddr string
	RedisDB   int
	KeyPrefix string
}

// Log 日志配置
type Log struct {
	Level  string
	Format string // text | json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.database", "pagekit.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)
	v.SetDefault("database.conn_max_idle_time", 0)

	v.SetDefault("paging.default_page_size", paging.DefaultPageSize)
	v.SetDefault("paging.max_page_size", paging.DefaultMaxPageSize)
	v.SetDefault("paging.count_cache.backend", "")
	v.SetDefault("paging.count_cache.ttl", "30s")
	v.SetDefault("paging.count_cache.max_size", 1024)
	v.SetDefault("paging.count_cache.redis_addr", "127.0.0.1:6379")
	v.SetDefault("paging.count_cache.redis_db", 0)
	v.SetDefault("paging.count_cache.key_prefix", "pagekit:count:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("snowflake.datacenter_id", 1)
	v.SetDefault("snowflake.worker_id", 1)
}

// Load 加载配置。path 为空时在当前目录与 $HOME/.pagekit 查找 pagekit.{yaml,json,toml}，
// 找不到配置文件不是错误；显式指定的文件读取失败则返回错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pagekit")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.pagekit")
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stdErrors.As(err, &notFound) {
			return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "failed to read config file")
		}
	}

	cfg := &Config{
		Database:  getDatabaseConfig(v),
		Paging:    getPagingConfig(v),
		Log:       getLogConfig(v),
		Snowflake: getSnowflakeConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getDatabaseConfig(v *viper.Viper) db.DBConfig {
	return db.DBConfig{
		Driver:          v.GetString("database.driver"),
		Database:        v.GetString("database.database"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		DefaultPageSize: v.GetInt("paging.default_page_size"),
		MaxPageSize:     v.GetInt("paging.max_page_size"),
		CountCache: &CountCache{
			Backend:   strings.ToLower(v.GetString("paging.count_cache.backend")),
			TTL:       v.GetDuration("paging.count_cache.ttl"),
			MaxSize:   v.GetInt("paging.count_cache.max_size"),
			RedisAddr: v.GetString("paging.count_cache.redis_addr"),
			RedisDB:   v.GetInt("paging.count_cache.redis_db"),
			KeyPrefix: v.GetString("paging.count_cache.key_prefix"),
		},
	}
}

func getLogConfig(v *viper.Viper) *Log {
	return &Log{
		Level:  v.GetString("log.level"),
		Format: strings.ToLower(v.GetString("log.format")),
	}
}

func getSnowflakeConfig(v *viper.Viper) snowflake.Config {
	return snowflake.Config{
		DatacenterID: v.GetInt64("snowflake.datacenter_id"),
		WorkerID:     v.GetInt64("snowflake.worker_id"),
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Database.Driver == "" {
		return invalid("database.driver", "driver is required")
	}
	p := c.Paging
	if p.MaxPageSize <= 0 {
		return invalid("paging.max_page_size", fmt.Sprintf("must be positive, got %d", p.MaxPageSize))
	}
	if err := validation.ValidateIntRange(p.DefaultPageSize, "paging.default_page_size", 1, p.MaxPageSize); err != nil {
		return wrapInvalid("paging.default_page_size", err)
	}
	if p.CountCache.Backend != "" {
		if err := validation.ValidateEnum(p.CountCache.Backend, "paging.count_cache.backend", []string{"memory", "redis"}); err != nil {
			return wrapInvalid("paging.count_cache.backend", err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return wrapInvalid("log.level", err)
	}
	if err := validation.ValidateEnum(c.Log.Format, "log.format", []string{"text", "json"}); err != nil {
		return wrapInvalid("log.format", err)
	}
	return nil
}

func invalid(key, msg string) error {
	return errors.NewError(errors.ErrCodeConfiguration, key+": "+msg).WithContext("key", key)
}

func wrapInvalid(key string, err error) error {
	return errors.WrapError(err, errors.ErrCodeConfiguration, "invalid "+key).WithContext("key", key)
}

// NewLogger 按 Log 配置创建 logrus 日志
func (c *Config) NewLogger(out io.Writer) logging.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.NewLogrusLogger(logging.LogrusOptions{
		Level:  level,
		JSON:   c.Log.Format == "json",
		Output: out,
	})
}
