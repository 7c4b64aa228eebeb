package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	confv1 "koober/internal/conf/v1"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Module 提供 Fx 模块
var Module = fx.Module("config",
	fx.Provide(
		func() (*confv1.Bootstrap, error) {
			// 从环境变量获取配置路径，如果没有设置则使用默认路径
			configPath := getConfigPath()

			conf, err := Load(configPath)
			if err != nil {
				return nil, err
			}
			fmt.Printf("Configuration loaded successfully from: %s\n", configPath)
			return conf, nil
		},
	),
)

// Load 读取 YAML 配置文件, KOOBER_ 前缀的环境变量覆盖文件中的值
// (例如 KOOBER_AUTH_JWT_SECRET 覆盖 auth.jwt_secret)
func Load(configPath string) (*confv1.Bootstrap, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("koober")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	conf := &confv1.Bootstrap{}
	if err := decode(v, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadClient 客户端配置, 配置文件可选
func LoadClient(configPath string) (*confv1.Client, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("koober")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_file", "")
	v.SetDefault("timeout_seconds", 10)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read client config %s: %w", configPath, err)
			}
		}
	}

	conf := &confv1.Client{}
	if err := decode(v, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// decode 将 viper 的全部配置按 json tag 解码到结构体 (snake_case 键对应字段)
func decode(v *viper.Viper, out interface{}) error {
	// 环境变量只覆盖已出现在文件或默认值中的键
	settings := v.AllSettings()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create config decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// getConfigPath 从环境变量获取配置路径
func getConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 容器中配置文件位于 /app/configs/config.yaml
	if isRunningInContainer() {
		return "/app/configs/config.yaml"
	}

	return "configs/config.yaml"
}

// isRunningInContainer 检查是否在容器中运行
func isRunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if cgroup, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		s := string(cgroup)
		if strings.Contains(s, "docker") || strings.Contains(s, "kubepods") {
			return true
		}
	}

	return os.Getenv("KUBERNETES_SERVICE_HOST") != "" || os.Getenv("CONTAINER") != ""
}

// ValidateConfig 验证配置的完整性
func ValidateConfig(conf *confv1.Bootstrap) error {
	if conf == nil {
		return errors.New("configuration is nil")
	}

	if conf.Server == nil || conf.Server.Http == nil || conf.Server.Http.Addr == "" {
		return errors.New("server configuration is required")
	}

	if conf.Data == nil || conf.Data.Database == nil {
		return errors.New("database configuration is required")
	}

	if conf.Data.Redis == nil {
		return errors.New("redis configuration is required")
	}

	if conf.Trace != nil && conf.Trace.Enabled && conf.Trace.Endpoint == "" {
		return errors.New("trace endpoint is required when tracing is enabled")
	}

	return nil
}
