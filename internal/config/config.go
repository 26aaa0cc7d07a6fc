// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	FAQ        FAQConfig        `mapstructure:"faq"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Escalation EscalationConfig `mapstructure:"escalation"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。brokers 为空时禁用事件上报。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MinIOConfig 存储 MinIO 对象存储的配置，仅在 faq.source 为 minio 时使用。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// FAQConfig 存储知识库加载与匹配的配置。
// source 可选 file（从 path 读取）或 minio（从 bucket 中的 object 读取）。
type FAQConfig struct {
	Source         string  `mapstructure:"source"`
	Path           string  `mapstructure:"path"`
	Object         string  `mapstructure:"object"`
	MatchThreshold float64 `mapstructure:"match_threshold"`
}

// LLMConfig 存储大语言模型相关的配置。
// models 是按顺序尝试的模型列表，前一个失败时回退到下一个。
type LLMConfig struct {
	APIKey       string              `mapstructure:"api_key"`
	BaseURL      string              `mapstructure:"base_url"`
	Models       []string            `mapstructure:"models"`
	SystemPrompt string              `mapstructure:"system_prompt"`
	Generation   LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数。
// temperature 固定参与请求（0 表示确定性采样），max_tokens 为 0 时不下发。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EscalationConfig 存储人工升级规则的配置。
type EscalationConfig struct {
	Keywords       []string `mapstructure:"keywords"`
	HandoffMessage string   `mapstructure:"handoff_message"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 所有可调项都有内置默认值，配置文件只需覆盖需要变更的部分。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	setDefaults()

	// LLM 凭证从环境变量注入，不落盘到配置文件。
	_ = viper.BindEnv("llm.api_key", "GROQ_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	// viper.Unmarshal 不会应用环境变量绑定，这里显式覆盖一次。
	if key := viper.GetString("llm.api_key"); key != "" {
		Conf.LLM.APIKey = key
	}
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output_path", "")

	viper.SetDefault("kafka.topic", "support-bot-turns")

	viper.SetDefault("faq.source", "file")
	viper.SetDefault("faq.path", "./configs/faqs.json")
	viper.SetDefault("faq.object", "faqs.json")
	viper.SetDefault("faq.match_threshold", 0.3)

	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.models", []string{"llama-3.1-8b-instant"})
	viper.SetDefault("llm.system_prompt",
		"You are a helpful and concise customer support assistant. "+
			"If the user's request is illegal, harmful, or requires human intervention, reply EXACTLY with the token: ESCALATE_TO_AGENT")
	viper.SetDefault("llm.generation.temperature", 0.0)
	viper.SetDefault("llm.generation.max_tokens", 0)

	viper.SetDefault("escalation.keywords", []string{
		"hack", "hacking", "illegal", "fraud", "steal", "breach",
		"attack", "exploit", "bomb", "terror", "kill",
	})
	viper.SetDefault("escalation.handoff_message",
		"I cannot help with that. Connecting you to a human agent...")
}
