package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `json:"app"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Logging  LoggingConfig  `json:"logging"`
	Features FeaturesConfig `json:"features"`
}

type AppConfig struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Port        int               `json:"port"`
	Host        string            `json:"host"`
	TLS         TLSConfig         `json:"tls"`
	Cors        CorsConfig        `json:"cors"`
	Metadata    map[string]string `json:"metadata"`
}

type TLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"certFile"`
	KeyFile  string `json:"keyFile"`
}

type CorsConfig struct {
	Enabled bool     `json:"enabled"`
	Origins []string `json:"origins"`
}

type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Database     string `json:"database"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	MaxConns     int    `json:"maxConns"`
	MaxIdleConns int    `json:"maxIdleConns"`
	SSLMode      string `json:"sslMode"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database int    `json:"database"`
	Password string `json:"password"`
	PoolSize int    `json:"poolSize"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

type FeaturesConfig struct {
	Analytics bool `json:"analytics"`
	Debugging bool `json:"debugging"`
}

// ConfigManager handles configuration loading and validation
type ConfigManager struct {
	schema skematic.Schema[Config]
}

func buildConfigSchema() skematic.Schema[Config] {
	tlsSchema := g.MustBind[TLSConfig](g.Object().
		Field("enabled", g.Bool()).Default(false).
		Field("certFile", g.String()).Default("").
		Field("keyFile", g.String()).Default("").
		UnknownStrict())

	corsSchema := g.MustBind[CorsConfig](g.Object().
		Field("enabled", g.Bool()).Default(true).
		Field("origins", g.Array(g.String())).Default([]string{"*"}).
		UnknownStrict())

	appSchema := g.MustBind[AppConfig](g.Object().
		Field("name", g.String().Min(1)).
		Field("version", g.String().Min(1)).
		Field("environment", g.String()).Default("development").
		Field("port", g.IntOf[int]()).Default(8080).
		Field("host", g.String()).Default("0.0.0.0").
		Field("tls", g.SchemaOf[TLSConfig](tlsSchema)).Default(TLSConfig{}).
		Field("cors", g.SchemaOf[CorsConfig](corsSchema)).Default(CorsConfig{Enabled: true, Origins: []string{"*"}}).
		Field("metadata", g.MapOf[string](g.String())).Default(map[string]string{}).
		UnknownStrict())

	dbSchema := g.MustBind[DatabaseConfig](g.Object().
		Field("host", g.String().Min(1)).
		Field("port", g.IntOf[int]()).Default(5432).
		Field("database", g.String().Min(1)).
		Field("username", g.String().Min(1)).
		Field("password", g.String()).Default("").
		Field("maxConns", g.IntOf[int]()).Default(10).
		Field("maxIdleConns", g.IntOf[int]()).Default(5).
		Field("sslMode", g.Enum("disable", "prefer", "require")).Default("prefer").
		UnknownStrict())

	redisSchema := g.MustBind[RedisConfig](g.Object().
		Field("host", g.String()).Default("localhost").
		Field("port", g.IntOf[int]()).Default(6379).
		Field("database", g.IntOf[int]()).Default(0).
		Field("password", g.String()).Default("").
		Field("poolSize", g.IntOf[int]()).Default(10).
		UnknownStrict())

	loggingSchema := g.MustBind[LoggingConfig](g.Object().
		Field("level", g.Enum("debug", "info", "warn", "error")).Default("info").
		Field("format", g.Enum("json", "text")).Default("json").
		Field("output", g.String()).Default("stdout").
		UnknownStrict())

	featuresSchema := g.MustBind[FeaturesConfig](g.Object().
		Field("analytics", g.Bool()).Default(true).
		Field("debugging", g.Bool()).Default(false).
		UnknownStrict())

	return g.MustBind[Config](g.Object().
		Field("app", g.SchemaOf[AppConfig](appSchema)).
		Field("database", g.SchemaOf[DatabaseConfig](dbSchema)).
		Field("redis", g.SchemaOf[RedisConfig](redisSchema)).Default(RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10}).
		Field("logging", g.SchemaOf[LoggingConfig](loggingSchema)).Default(LoggingConfig{Level: "info", Format: "json", Output: "stdout"}).
		Field("features", g.SchemaOf[FeaturesConfig](featuresSchema)).Default(FeaturesConfig{Analytics: true}).
		UnknownStrict())
}

func NewConfigManager() *ConfigManager {
	return &ConfigManager{schema: buildConfigSchema()}
}

func (cm *ConfigManager) LoadConfig(env string) (Config, error) {
	ctx := context.Background()

	baseData, err := cm.loadFile("base.yaml")
	if err != nil {
		return Config{}, fmt.Errorf("failed to load base config: %w", err)
	}
	baseData = cm.expandEnvVars(baseData)

	baseConfig, err := skematic.ParseFrom(ctx, cm.schema, skematic.YAMLBytes(baseData))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse base config: %w", err)
	}

	// Overlay the environment-specific file when it exists.
	envFile := fmt.Sprintf("%s.yaml", env)
	if cm.fileExists(envFile) {
		envData, err := cm.loadFile(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to load %s config: %w", env, err)
		}
		envData = cm.expandEnvVars(envData)

		envConfig, err := skematic.ParseFrom(ctx, cm.schema, skematic.YAMLBytes(envData))
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s config: %w", env, err)
		}
		return cm.mergeConfigs(baseConfig, envConfig), nil
	}

	return baseConfig, nil
}

func (cm *ConfigManager) ValidateConfig(env string) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	// Cross-field checks the per-field schema cannot express.
	if config.App.Port < 1 || config.App.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.App.Port)
	}
	if config.App.TLS.Enabled && (config.App.TLS.CertFile == "" || config.App.TLS.KeyFile == "") {
		return fmt.Errorf("TLS enabled but cert/key files not specified")
	}
	if config.Database.MaxIdleConns > config.Database.MaxConns {
		return fmt.Errorf("maxIdleConns (%d) exceeds maxConns (%d)", config.Database.MaxIdleConns, config.Database.MaxConns)
	}

	fmt.Printf("✅ Configuration for environment '%s' is valid!\n", env)
	return nil
}

func (cm *ConfigManager) ShowConfig(env string, maskSecrets bool) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	if maskSecrets {
		config = cm.maskSecrets(config)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Printf("Configuration for environment: %s\n", env)
	fmt.Println(strings.Repeat("=", len(env)+27))
	fmt.Print(string(data))

	return nil
}

func (cm *ConfigManager) GenerateTemplate() error {
	templates := map[string]string{
		"base.yaml": `# Base configuration (common settings)
app:
  name: "MyWebApp"
  version: "1.0.0"
  host: "0.0.0.0"
  port: 8080
  tls:
    enabled: false
  cors:
    enabled: true
    origins: ["*"]
  metadata:
    author: "Your Name"
    description: "Web application"

database:
  host: "localhost"
  port: 5432
  database: "myapp"
  username: "postgres"
  maxConns: 10
  maxIdleConns: 5
  sslMode: "prefer"

redis:
  host: "localhost"
  port: 6379
  database: 0
  poolSize: 10

logging:
  level: "info"
  format: "json"
  output: "stdout"

features:
  analytics: true
  debugging: false
`,
		"development.yaml": `# Development environment overrides
app:
  environment: "development"
  port: 3000

database:
  password: "${DB_PASSWORD:-dev_password}"
  sslMode: "disable"

logging:
  level: "debug"

features:
  debugging: true
`,
		"production.yaml": `# Production environment overrides
app:
  environment: "production"
  port: 80
  tls:
    enabled: true
    certFile: "${TLS_CERT_FILE}"
    keyFile: "${TLS_KEY_FILE}"
  cors:
    origins: ["https://example.com", "https://app.example.com"]

database:
  host: "${DB_HOST}"
  password: "${DB_PASSWORD}"
  maxConns: 50
  maxIdleConns: 10
  sslMode: "require"

redis:
  host: "${REDIS_HOST}"
  password: "${REDIS_PASSWORD}"
  poolSize: 50

logging:
  level: "warn"
  output: "${LOG_OUTPUT:-stdout}"

features:
  debugging: false
`,
	}

	for filename, content := range templates {
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("generated %s\n", filename)
	}

	fmt.Println("✅ Template configuration files generated!")
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration files as needed")
	fmt.Println("2. Set required environment variables")
	fmt.Println("3. Validate with: go run . validate --env=development")

	return nil
}

func (cm *ConfigManager) loadFile(filename string) ([]byte, error) {
	if !cm.fileExists(filename) {
		return nil, fmt.Errorf("file %s does not exist", filename)
	}
	return os.ReadFile(filename)
}

func (cm *ConfigManager) fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} before the YAML is
// parsed, so secrets never need to live in the files themselves.
func (cm *ConfigManager) expandEnvVars(data []byte) []byte {
	content := string(data)
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	result := re.ReplaceAllStringFunc(content, func(match string) string {
		varExpr := match[2 : len(match)-1]

		if strings.Contains(varExpr, ":-") {
			parts := strings.SplitN(varExpr, ":-", 2)
			if value := os.Getenv(parts[0]); value != "" {
				return value
			}
			return parts[1]
		}
		return os.Getenv(varExpr)
	})

	return []byte(result)
}

// mergeConfigs overlays non-zero override values onto the base config. Both
// sides already passed schema validation, so only presence-style decisions
// remain here.
func (cm *ConfigManager) mergeConfigs(base, override Config) Config {
	result := base

	if override.App.Environment != "" {
		result.App.Environment = override.App.Environment
	}
	if override.App.Port != 0 {
		result.App.Port = override.App.Port
	}
	if override.App.TLS.Enabled {
		result.App.TLS = override.App.TLS
	}
	if len(override.App.Cors.Origins) > 0 {
		result.App.Cors = override.App.Cors
	}
	if override.Database.Host != "" {
		result.Database.Host = override.Database.Host
	}
	if override.Database.Password != "" {
		result.Database.Password = override.Database.Password
	}
	if override.Database.MaxConns != 0 {
		result.Database.MaxConns = override.Database.MaxConns
	}
	if override.Database.SSLMode != "" {
		result.Database.SSLMode = override.Database.SSLMode
	}
	if override.Redis.Host != "" {
		result.Redis.Host = override.Redis.Host
	}
	if override.Redis.Password != "" {
		result.Redis.Password = override.Redis.Password
	}
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}

	return result
}

func (cm *ConfigManager) maskSecrets(config Config) Config {
	masked := config

	if masked.Database.Password != "" {
		masked.Database.Password = "***masked***"
	}
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***masked***"
	}
	if masked.App.TLS.KeyFile != "" {
		masked.App.TLS.KeyFile = "***masked***"
	}

	return masked
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cm := NewConfigManager()
	command := os.Args[1]

	switch command {
	case "validate":
		env := getEnvFlag()
		if err := cm.ValidateConfig(env); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Validation failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		env := getEnvFlag()
		maskSecrets := !getBoolFlag("--no-mask")
		if err := cm.ShowConfig(env, maskSecrets); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Show failed: %v\n", err)
			os.Exit(1)
		}

	case "generate":
		if getBoolFlag("--template") {
			if err := cm.GenerateTemplate(); err != nil {
				fmt.Fprintf(os.Stderr, "❌ Generate failed: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "❌ Use --template flag to generate template files\n")
			os.Exit(1)
		}

	case "schema":
		schema, err := cm.schema.JSONSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema generation failed: %v\n", err)
			os.Exit(1)
		}

		data, err := yaml.Marshal(schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema marshal failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Configuration JSON Schema:")
		fmt.Print(string(data))

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`skematic Config Manager Sample

Usage: %s <command> [flags...]

Commands:
  validate [--env=<env>]                Validate configuration for environment
  show [--env=<env>] [--no-mask]        Show configuration (default: mask secrets)
  generate --template                   Generate template configuration files
  schema                                Show JSON Schema for configuration

Flags:
  --env=<environment>      Environment (default: development)
  --no-mask               Don't mask sensitive information
  --template              Generate template files

Examples:
  %s validate --env=development
  %s show --env=production --no-mask
  %s generate --template
  %s schema

Environment Files:
  base.yaml               Base configuration (required)
  <environment>.yaml      Environment-specific overrides (optional)

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func getEnvFlag() string {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "--env=") {
			return strings.TrimPrefix(arg, "--env=")
		}
	}
	return "development"
}

func getBoolFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
