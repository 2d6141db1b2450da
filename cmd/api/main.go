package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/infrastructure/cache"
	"github.com/adpilot/campaign-sync-api/infrastructure/database/postgres"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/amazon"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/coupang"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/facebook"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/google"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/kakao"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/naver"
	"github.com/adpilot/campaign-sync-api/infrastructure/integrator/tiktok"
	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/api"
	"github.com/adpilot/campaign-sync-api/internal/config"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	"github.com/adpilot/campaign-sync-api/internal/scheduler"
	"github.com/adpilot/campaign-sync-api/internal/token"
	"github.com/adpilot/campaign-sync-api/internal/usecases/authenticating"
	"github.com/adpilot/campaign-sync-api/internal/usecases/connecting"
	"github.com/adpilot/campaign-sync-api/internal/usecases/managing"
	"github.com/adpilot/campaign-sync-api/internal/usecases/syncing"
	"github.com/adpilot/campaign-sync-api/pkg/retry"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	credentialRepo := repository.NewCredentialRepository(pgConn)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	metricRepo := repository.NewMetricRepository(pgConn)

	// O cache de tokens é opcional: sem Redis o Refresher trabalha
	// direto com o banco
	var tokenCache *cache.TokenCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			logrus.WithError(err).Warn("Erro ao conectar ao Redis, seguindo sem cache de tokens")
		} else {
			defer redisClient.Close()
			tokenCache = cache.NewTokenCache(redisClient)
			logrus.Info("Cache de tokens Redis habilitado")
		}
	}

	registry := platforms.NewRegistry(
		google.New(cfg.Google),
		facebook.New(cfg.Facebook),
		kakao.New(cfg.Kakao),
		naver.New(cfg.Naver),
		coupang.New(cfg.Coupang),
		amazon.New(cfg.Amazon),
		tiktok.New(cfg.TikTok),
	)

	refresher := token.NewRefresher(
		credentialRepo,
		registry,
		tokenCache,
		cfg.Sync.RefreshBuffer(),
		retry.DefaultPolicy(cfg.Sync.RetryMaxAttempts),
	)

	authenticator := authenticating.NewService(cfg)
	connector := connecting.NewService(credentialRepo, campaignRepo, registry)
	syncer := syncing.NewService(credentialRepo, campaignRepo, metricRepo, registry, refresher, cfg.Sync)
	manager := managing.NewService(credentialRepo, campaignRepo, metricRepo, registry, refresher)

	platformSyncService := scheduler.NewPlatformSyncService(credentialRepo, syncer, cfg)
	if err := platformSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de campanhas")
	} else {
		logrus.Info("Agendador de sincronização de campanhas iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		connector,
		manager,
		syncer,
		authenticator,
		platformSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
