package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Query     QueryConfig     `yaml:"query"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

// LLMConfig 自然语言查询助手使用的模型，APIKey 为空时助手不可用
type LLMConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type LifecycleConfig struct {
	// SignerUserID 单签模式下默认的签批人
	SignerUserID uint `yaml:"signer_user_id"`
	// RetainSignatureHistory 为 true 时离开 Approved 不清空签名字段
	RetainSignatureHistory bool `yaml:"retain_signature_history"`
	// EnforceSignatureQuorum 为 true 时打印前校验签名数
	EnforceSignatureQuorum bool `yaml:"enforce_signature_quorum"`
	// DualSignatureThreshold 金额超过该值需要两个签名
	DualSignatureThreshold string `yaml:"dual_signature_threshold"`
}

type IngestionConfig struct {
	Sheet string `yaml:"sheet"`
}

type QueryConfig struct {
	MaxRows int `yaml:"max_rows"`
}

type StorageConfig struct {
	ExportDir string      `yaml:"export_dir"`
	MinIO     MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled 未配置 endpoint 时不启用 MinIO 导出
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

type RateLimitConfig struct {
	QueryRPS   float64 `yaml:"query_rps"`
	QueryBurst int     `yaml:"query_burst"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		// .env 只补充未设置的环境变量
		if err := godotenv.Load(); err == nil {
			klog.V(6).Infof("已加载 .env 文件")
		}
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config.yaml"
		}
		cfg = Load(configPath)
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/cheques.db",
		},
		LLM: LLMConfig{
			APIURL:    "https://api.openai.com/v1",
			Model:     "gpt-4o",
			MaxTokens: 1024,
		},
		Lifecycle: LifecycleConfig{
			SignerUserID:           1,
			DualSignatureThreshold: "1500",
		},
		Ingestion: IngestionConfig{
			Sheet: "Sheet1",
		},
		Query: QueryConfig{
			MaxRows: 1000,
		},
		Storage: StorageConfig{
			ExportDir: "./data/exports",
			MinIO: MinIOConfig{
				Bucket: "cheque-documents",
			},
		},
		RateLimit: RateLimitConfig{
			QueryRPS:   2,
			QueryBurst: 5,
		},
	}
}

// Load 读取配置文件（不存在时使用默认值），再用环境变量覆盖
func Load(path string) *Config {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Warningf("解析配置文件失败，使用默认配置: path=%s, error=%v", path, err)
			config = Default()
		}
	}

	applyEnv(config)
	return config
}

// 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}

	if signer := os.Getenv("SIGNER_USER_ID"); signer != "" {
		if id, err := strconv.ParseUint(signer, 10, 32); err == nil {
			config.Lifecycle.SignerUserID = uint(id)
		} else {
			klog.Warningf("SIGNER_USER_ID 无效: %s", signer)
		}
	}

	if exportDir := os.Getenv("EXPORT_DIR"); exportDir != "" {
		config.Storage.ExportDir = exportDir
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.MinIO.Endpoint = endpoint
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.MinIO.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.MinIO.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.MinIO.Bucket = bucket
	}
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
