package handler

import (
	"net/http"

	"github.com/adpilot/campaign-sync-api/internal/api/handler/router"
	"github.com/adpilot/campaign-sync-api/internal/scheduler"
	"github.com/adpilot/campaign-sync-api/internal/usecases/connecting"
	"github.com/adpilot/campaign-sync-api/internal/usecases/managing"
	"github.com/adpilot/campaign-sync-api/internal/usecases/syncing"
	"github.com/adpilot/campaign-sync-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Platforms(service connecting.Connector) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/platforms/credentials",
			Method:      http.MethodGet,
			Handler:     ListCredentials(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/platforms/connect",
			Method:      http.MethodPost,
			Handler:     ConnectPlatform(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/platforms/credentials/:id",
			Method:      http.MethodDelete,
			Handler:     DisconnectPlatform(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Campaigns(service managing.Manager) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/campaigns",
			Method:      http.MethodGet,
			Handler:     ListCampaigns(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/campaigns/:id/metrics",
			Method:      http.MethodGet,
			Handler:     GetCampaignMetrics(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/campaigns/:id/budget",
			Method:      http.MethodPut,
			Handler:     UpdateCampaignBudget(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/campaigns/:id/status",
			Method:      http.MethodPut,
			Handler:     UpdateCampaignStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Sync(service syncing.Syncer, schedulerService *scheduler.PlatformSyncService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sync",
			Method:      http.MethodPost,
			Handler:     SyncAllPlatforms(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/sync/status",
			Method:      http.MethodGet,
			Handler:     GetSyncStatus(schedulerService),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/sync/run",
			Method:      http.MethodPost,
			Handler:     RunScheduledSync(schedulerService),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/sync/platforms/:platform",
			Method:      http.MethodPost,
			Handler:     SyncPlatform(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
