package config

import (
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PaymentConfig 支付渠道配置
type PaymentConfig struct {
	Inicis  PgConfig `mapstructure:"inicis"`
	NicePay PgConfig `mapstructure:"nicepay"`
	Timeout int      `mapstructure:"timeout"` // 渠道调用超时（秒）
}

// PgConfig 单个PG公司配置
type PgConfig struct {
	Mid       string `mapstructure:"mid"`        // 商户号
	ApiKey    string `mapstructure:"api_key"`    // API密钥
	SignKey   string `mapstructure:"sign_key"`   // 签名密钥
	ApiURL    string `mapstructure:"api_url"`    // 承认接口地址
	CancelURL string `mapstructure:"cancel_url"` // 取消接口地址
	ReturnURL string `mapstructure:"return_url"` // 支付完成回调地址
	CloseURL  string `mapstructure:"close_url"`  // 支付窗口关闭地址
	Weight    int    `mapstructure:"weight"`     // 加权随机路由权重
}

type TaskConfig struct {
	Interval        int `mapstructure:"interval"`         // 秒
	PendingAgeLimit int `mapstructure:"pending_age_limit"` // 结算记录滞留告警阈值（秒）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/vibepay")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "vibepay")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("payment.timeout", 10)
	viper.SetDefault("payment.inicis.weight", 50)
	viper.SetDefault("payment.nicepay.weight", 50)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.pending_age_limit", 600)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
