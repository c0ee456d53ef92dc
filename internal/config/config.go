package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 控制面配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	APIKey       string        `mapstructure:"apiKey"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// DroidConfig 机器人链路配置
type DroidConfig struct {
	Name           string        `mapstructure:"name"`           // 精确广播名，空则按前缀匹配
	Address        string        `mapstructure:"address"`        // BLE 地址，设置时优先于名字
	ScanTimeout    time.Duration `mapstructure:"scanTimeout"`    // 扫描超时
	CommandTimeout time.Duration `mapstructure:"commandTimeout"` // 单命令响应超时
	MinCmdInterval time.Duration `mapstructure:"minCmdInterval"` // 相邻命令最小间隔
	WakeOnConnect  bool          `mapstructure:"wakeOnConnect"`  // 连接后自动唤醒
	ChunkDelay     time.Duration `mapstructure:"chunkDelay"`     // BLE 分片写入间隔
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Droid   DroidConfig   `mapstructure:"droid"`
}

// Validate 校验关键字段
func (c *Config) Validate() error {
	if c.Droid.CommandTimeout <= 0 {
		return fmt.Errorf("droid.commandTimeout must be positive, got %s", c.Droid.CommandTimeout)
	}
	if c.Droid.MinCmdInterval < 0 {
		return fmt.Errorf("droid.minCmdInterval must not be negative, got %s", c.Droid.MinCmdInterval)
	}
	if c.Droid.ScanTimeout <= 0 {
		return fmt.Errorf("droid.scanTimeout must be positive, got %s", c.Droid.ScanTimeout)
	}
	return nil
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 DROID_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = v.GetString("DROID_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 DROID_，并将点号替换为下划线
	v.SetEnvPrefix("DROID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "droidlink")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.apiKey", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("droid.name", "")
	v.SetDefault("droid.address", "")
	v.SetDefault("droid.scanTimeout", "15s")
	v.SetDefault("droid.commandTimeout", "10s")
	v.SetDefault("droid.minCmdInterval", "120ms")
	v.SetDefault("droid.wakeOnConnect", true)
	v.SetDefault("droid.chunkDelay", "0s")
}
