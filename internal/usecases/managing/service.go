package managing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
	"github.com/adpilot/campaign-sync-api/internal/usecases/syncing"
)

var (
	ErrCampaignNotFound = errors.New("campanha não encontrada")

	// ErrRejectedByPlatform indica que a plataforma recusou a mutação por
	// uma regra de negócio própria (ex.: orçamento abaixo do mínimo).
	// A operação não deve ser retentada sem alteração da entrada
	ErrRejectedByPlatform = errors.New("alteração recusada pela plataforma")
)

// Manager expõe leitura e mutação das campanhas sincronizadas
type Manager interface {
	ListCampaigns(teamID string, platform *domain.Platform) ([]*domain.Campaign, error)
	GetCampaignMetrics(teamID, campaignID string, window domain.DateRange) ([]*domain.CampaignMetric, error)

	// UpdateBudget altera o orçamento na plataforma e reflete no registro local
	UpdateBudget(ctx context.Context, teamID, campaignID string, budget float64) (*domain.Campaign, error)

	// UpdateStatus ativa ou pausa a campanha na plataforma
	UpdateStatus(ctx context.Context, teamID, campaignID string, active bool) (*domain.Campaign, error)
}

type Service struct {
	creds     repository.CredentialRepository
	campaigns repository.CampaignRepository
	metrics   repository.MetricRepository
	registry  *platforms.Registry
	tokens    syncing.TokenEnsurer
}

func NewService(
	creds repository.CredentialRepository,
	campaigns repository.CampaignRepository,
	metrics repository.MetricRepository,
	registry *platforms.Registry,
	tokens syncing.TokenEnsurer,
) Manager {
	return &Service{
		creds:     creds,
		campaigns: campaigns,
		metrics:   metrics,
		registry:  registry,
		tokens:    tokens,
	}
}

func (s *Service) ListCampaigns(teamID string, platform *domain.Platform) ([]*domain.Campaign, error) {
	return s.campaigns.ListByTeam(teamID, platform)
}

func (s *Service) GetCampaignMetrics(teamID, campaignID string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	if _, err := s.ownedCampaign(teamID, campaignID); err != nil {
		return nil, err
	}

	return s.metrics.GetByCampaignAndRange(campaignID, window)
}

func (s *Service) UpdateBudget(ctx context.Context, teamID, campaignID string, budget float64) (*domain.Campaign, error) {
	if budget <= 0 {
		return nil, &platforms.ValidationError{Field: "budget", Message: "orçamento deve ser maior que zero"}
	}

	campaign, cred, adapter, err := s.prepareMutation(ctx, teamID, campaignID)
	if err != nil {
		return nil, err
	}

	applied, err := adapter.UpdateCampaignBudget(ctx, cred, campaign.ExternalID, budget)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrRejectedByPlatform
	}

	campaign.Budget = budget
	saved, err := s.campaigns.Upsert(campaign)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":     teamID,
		"campaign_id": campaignID,
		"platform":    campaign.Platform,
		"budget":      budget,
	}).Info("Orçamento da campanha atualizado")

	return saved, nil
}

func (s *Service) UpdateStatus(ctx context.Context, teamID, campaignID string, active bool) (*domain.Campaign, error) {
	campaign, cred, adapter, err := s.prepareMutation(ctx, teamID, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status == domain.CampaignStatusRemoved {
		return nil, &platforms.ValidationError{Field: "status", Message: "campanha removida não pode ser alterada"}
	}

	applied, err := adapter.UpdateCampaignStatus(ctx, cred, campaign.ExternalID, active)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrRejectedByPlatform
	}

	if active {
		campaign.Status = domain.CampaignStatusActive
	} else {
		campaign.Status = domain.CampaignStatusPaused
	}

	saved, err := s.campaigns.Upsert(campaign)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":     teamID,
		"campaign_id": campaignID,
		"platform":    campaign.Platform,
		"active":      active,
	}).Info("Status da campanha atualizado")

	return saved, nil
}

// prepareMutation resolve campanha, credencial e adapter, já com um
// access token válido pronto para a chamada de mutação
func (s *Service) prepareMutation(ctx context.Context, teamID, campaignID string) (*domain.Campaign, *domain.PlatformCredential, platforms.Adapter, error) {
	campaign, err := s.ownedCampaign(teamID, campaignID)
	if err != nil {
		return nil, nil, nil, err
	}

	cred, err := s.creds.GetByID(campaign.CredentialID)
	if err != nil {
		return nil, nil, nil, err
	}
	if cred == nil || !cred.Active {
		return nil, nil, nil, &platforms.RefreshError{
			Platform: campaign.Platform,
			Reason:   "credencial da campanha desativada; reconecte a conta",
		}
	}

	adapter, err := s.registry.Get(campaign.Platform)
	if err != nil {
		return nil, nil, nil, err
	}

	accessToken, err := s.tokens.EnsureValidToken(ctx, cred)
	if err != nil {
		return nil, nil, nil, err
	}
	cred.AccessToken = accessToken

	return campaign, cred, adapter, nil
}

func (s *Service) ownedCampaign(teamID, campaignID string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil || campaign.TeamID != teamID {
		return nil, ErrCampaignNotFound
	}

	return campaign, nil
}
