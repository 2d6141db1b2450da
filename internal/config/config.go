package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App      App      `mapstructure:",squash"`
	Server   Server   `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
	Redis    Redis    `mapstructure:",squash"`
	Auth     Auth     `mapstructure:",squash"`
	Sync     Sync     `mapstructure:",squash"`
	Trigger  Trigger  `mapstructure:",squash"`
	Google   Google   `mapstructure:",squash"`
	Facebook Facebook `mapstructure:",squash"`
	Kakao    Kakao    `mapstructure:",squash"`
	Naver    Naver    `mapstructure:",squash"`
	Coupang  Coupang  `mapstructure:",squash"`
	Amazon   Amazon   `mapstructure:",squash"`
	TikTok   TikTok   `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	URL     string `mapstructure:"redis_url"`
	Enabled bool   `mapstructure:"redis_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Sync concentra os parâmetros de ajuste da sincronização.
// Os valores de referência (12h de frescor, 30min de buffer) são padrões
// configuráveis, não invariantes
type Sync struct {
	FreshnessHours       int `mapstructure:"sync_freshness_hours"`
	LookbackDays         int `mapstructure:"sync_lookback_days"`
	RefreshBufferMinutes int `mapstructure:"token_refresh_buffer_minutes"`
	AccountConcurrency   int `mapstructure:"sync_account_concurrency"`
	PlatformConcurrency  int `mapstructure:"sync_platform_concurrency"`
	RetryMaxAttempts     int `mapstructure:"sync_retry_max_attempts"`
}

type Trigger struct {
	CronSchedule      string `mapstructure:"sync_trigger_cron"`
	Enabled           bool   `mapstructure:"sync_trigger_enabled"`
	RunTimeoutMinutes int    `mapstructure:"sync_trigger_run_timeout_minutes"`
}

type Google struct {
	ClientID       string `mapstructure:"google_client_id"`
	ClientSecret   string `mapstructure:"google_client_secret"`
	DeveloperToken string `mapstructure:"google_developer_token"`
	TokenURL       string `mapstructure:"google_token_url"`
	BaseURL        string `mapstructure:"google_base_url"`
	Version        string `mapstructure:"google_api_version"`
	RedirectURI    string `mapstructure:"google_redirect_uri"`
}

type Facebook struct {
	AppID       string `mapstructure:"facebook_app_id"`
	AppSecret   string `mapstructure:"facebook_app_secret"`
	BaseURL     string `mapstructure:"facebook_base_url"`
	Version     string `mapstructure:"facebook_api_version"`
	URL         string `mapstructure:"-"`
	RedirectURI string `mapstructure:"facebook_redirect_uri"`
}

type Kakao struct {
	ClientID     string `mapstructure:"kakao_client_id"`
	ClientSecret string `mapstructure:"kakao_client_secret"`
	TokenURL     string `mapstructure:"kakao_token_url"`
	BaseURL      string `mapstructure:"kakao_base_url"`
	RedirectURI  string `mapstructure:"kakao_redirect_uri"`
}

type Naver struct {
	ClientID     string `mapstructure:"naver_client_id"`
	ClientSecret string `mapstructure:"naver_client_secret"`
	TokenURL     string `mapstructure:"naver_token_url"`
	BaseURL      string `mapstructure:"naver_base_url"`
	RedirectURI  string `mapstructure:"naver_redirect_uri"`
}

type Coupang struct {
	ClientID     string `mapstructure:"coupang_client_id"`
	ClientSecret string `mapstructure:"coupang_client_secret"`
	TokenURL     string `mapstructure:"coupang_token_url"`
	BaseURL      string `mapstructure:"coupang_base_url"`
	RedirectURI  string `mapstructure:"coupang_redirect_uri"`
}

type Amazon struct {
	ClientID     string `mapstructure:"amazon_client_id"`
	ClientSecret string `mapstructure:"amazon_client_secret"`
	TokenURL     string `mapstructure:"amazon_token_url"`
	BaseURL      string `mapstructure:"amazon_base_url"`
	RedirectURI  string `mapstructure:"amazon_redirect_uri"`
}

type TikTok struct {
	AppID       string `mapstructure:"tiktok_app_id"`
	AppSecret   string `mapstructure:"tiktok_app_secret"`
	BaseURL     string `mapstructure:"tiktok_base_url"`
	RedirectURI string `mapstructure:"tiktok_redirect_uri"`
}

// RefreshBuffer converte o buffer de renovação para time.Duration
func (s Sync) RefreshBuffer() time.Duration {
	return time.Duration(s.RefreshBufferMinutes) * time.Minute
}

// FreshnessThreshold converte o limiar de frescor para time.Duration
func (s Sync) FreshnessThreshold() time.Duration {
	return time.Duration(s.FreshnessHours) * time.Hour
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/adpilot")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Defaults de sincronização; ver comentários na struct Sync
	viper.SetDefault("SYNC_FRESHNESS_HOURS", 12)         // Sincronização FULL quando o último sync passou de 12h
	viper.SetDefault("SYNC_LOOKBACK_DAYS", 30)           // Janela padrão de métricas no sync FULL
	viper.SetDefault("TOKEN_REFRESH_BUFFER_MINUTES", 30) // Renovar tokens 30min antes de expirar
	viper.SetDefault("SYNC_ACCOUNT_CONCURRENCY", 3)      // Contas em paralelo por plataforma
	viper.SetDefault("SYNC_PLATFORM_CONCURRENCY", 3)     // Plataformas em paralelo por lote
	viper.SetDefault("SYNC_RETRY_MAX_ATTEMPTS", 4)       // Tentativas por chamada externa

	viper.SetDefault("SYNC_TRIGGER_CRON", "0 */6 * * *") // A cada 6 horas
	viper.SetDefault("SYNC_TRIGGER_ENABLED", false)
	viper.SetDefault("SYNC_TRIGGER_RUN_TIMEOUT_MINUTES", 30)

	viper.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_API_VERSION", "v17")

	viper.SetDefault("FACEBOOK_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("FACEBOOK_API_VERSION", "v22.0")

	viper.SetDefault("KAKAO_TOKEN_URL", "https://kauth.kakao.com/oauth/token")
	viper.SetDefault("KAKAO_BASE_URL", "https://apis.moment.kakao.com/openapi/v4")

	viper.SetDefault("NAVER_TOKEN_URL", "https://nid.naver.com/oauth2.0/token")
	viper.SetDefault("NAVER_BASE_URL", "https://api.searchad.naver.com")

	viper.SetDefault("COUPANG_TOKEN_URL", "https://api-gateway.coupang.com/oauth2/token")
	viper.SetDefault("COUPANG_BASE_URL", "https://advertising-api.coupang.com")

	viper.SetDefault("AMAZON_TOKEN_URL", "https://api.amazon.com/auth/o2/token")
	viper.SetDefault("AMAZON_BASE_URL", "https://advertising-api.amazon.com")

	viper.SetDefault("TIKTOK_BASE_URL", "https://business-api.tiktok.com/open_api/v1.3")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Facebook.URL = fmt.Sprintf("%s/%s", config.Facebook.BaseURL, config.Facebook.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}
}
