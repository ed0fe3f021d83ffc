package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Prettify bool   `mapstructure:"prettify"`
	File     string `mapstructure:"file"`
	// rotation settings only apply when File is set
	MaxSizeMB  int `mapstructure:"maxSizeMB"`
	MaxBackups int `mapstructure:"maxBackups"`
	MaxAgeDays int `mapstructure:"maxAgeDays"`
}

type RPCConfig struct {
	URL               string  `mapstructure:"url"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
}

type ContractConfig struct {
	Address string `mapstructure:"address"`
	ABIPath string `mapstructure:"abiPath"`
}

type IDOContractConfig struct {
	ContractConfig `mapstructure:",squash"`
	// Deposit events are only fetched while the scan cursor is below this block
	UntilBlock string `mapstructure:"untilBlock"`
}

type ContractsConfig struct {
	Token ContractConfig    `mapstructure:"token"`
	IDO   IDOContractConfig `mapstructure:"ido"`
}

type IngestConfig struct {
	FromBlock          string `mapstructure:"fromBlock"`
	Step               int64  `mapstructure:"step"`
	WindowDelay        int    `mapstructure:"windowDelay"`
	MergeLookback      int    `mapstructure:"mergeLookback"`
	BufferAccountIndex int    `mapstructure:"bufferAccountIndex"`
}

type RetryConfig struct {
	Initial     int `mapstructure:"initial"`
	Increment   int `mapstructure:"increment"`
	Max         int `mapstructure:"max"`
	MaxAttempts int `mapstructure:"maxAttempts"`
}

type StorageConfig struct {
	Checkpoint StorageConnectionConfig `mapstructure:"checkpoint"`
}

type StorageConnectionConfig struct {
	File     *FileConfig     `mapstructure:"file"`
	Memory   *MemoryConfig   `mapstructure:"memory"`
	Pebble   *PebbleConfig   `mapstructure:"pebble"`
	Badger   *BadgerConfig   `mapstructure:"badger"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	S3       *S3Config       `mapstructure:"s3"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type MemoryConfig struct{}

type PebbleConfig struct {
	Path string `mapstructure:"path"`
}

type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
	EnableTLS bool   `mapstructure:"enableTLS"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"sslMode"`
	ConnectTimeout int    `mapstructure:"connectTimeout"`
	Table          string `mapstructure:"table"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
}

type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	EnableTLS   bool   `mapstructure:"enableTLS"`
	TopicPrefix string `mapstructure:"topicPrefix"`
}

type PublisherConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Kafka   KafkaConfig `mapstructure:"kafka"`
}

type ParquetExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type ClickhouseConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	EnableTLS bool   `mapstructure:"enableTLS"`
}

type ExportConfig struct {
	Parquet    *ParquetExportConfig `mapstructure:"parquet"`
	Clickhouse *ClickhouseConfig    `mapstructure:"clickhouse"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type Config struct {
	RPC       RPCConfig       `mapstructure:"rpc"`
	Log       LogConfig       `mapstructure:"log"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Export    ExportConfig    `mapstructure:"export"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

var Cfg Config

// defaults also register every key with viper so that AutomaticEnv overrides
// are picked up by Unmarshal
func setDefaults() {
	viper.SetDefault("rpc.url", "")
	viper.SetDefault("rpc.requestsPerSecond", 0)
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.prettify", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.maxSizeMB", 100)
	viper.SetDefault("log.maxBackups", 5)
	viper.SetDefault("log.maxAgeDays", 30)
	viper.SetDefault("contracts.token.address", "")
	viper.SetDefault("contracts.token.abiPath", "")
	viper.SetDefault("contracts.ido.address", "")
	viper.SetDefault("contracts.ido.abiPath", "")
	viper.SetDefault("contracts.ido.untilBlock", "0")
	viper.SetDefault("ingest.fromBlock", "0")
	viper.SetDefault("ingest.step", 5000)
	viper.SetDefault("ingest.windowDelay", 200)
	viper.SetDefault("ingest.mergeLookback", 1)
	viper.SetDefault("ingest.bufferAccountIndex", 4)
	viper.SetDefault("retry.initial", 0)
	viper.SetDefault("retry.increment", 200)
	viper.SetDefault("retry.max", 0)
	viper.SetDefault("retry.maxAttempts", 0)
	viper.SetDefault("storage.checkpoint.file.dir", "./mainnet")
	viper.SetDefault("publisher.enabled", false)
	viper.SetDefault("publisher.kafka.brokers", "")
	viper.SetDefault("publisher.kafka.username", "")
	viper.SetDefault("publisher.kafka.password", "")
	viper.SetDefault("publisher.kafka.enableTLS", false)
	viper.SetDefault("publisher.kafka.topicPrefix", "ledger")
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.port", 2112)
}

func LoadConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file, %s", err)
			}
		}

		viper.SetConfigName("secrets")
		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error loading secrets file: %v", err)
			}
		}
	}

	// sets e.g. RPC_URL to rpc.url
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv()

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		return fmt.Errorf("error unmarshalling config: %v", err)
	}

	return nil
}
