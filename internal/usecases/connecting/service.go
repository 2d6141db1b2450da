package connecting

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/adpilot/campaign-sync-api/infrastructure/repository"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

var ErrCredentialNotFound = errors.New("credencial não encontrada")

// ConnectRequest são os dados necessários para conectar uma conta externa
type ConnectRequest struct {
	TeamID      string `json:"-"`
	Platform    string `json:"platform"`
	AuthCode    string `json:"auth_code"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
}

// Connector gerencia o ciclo de vida das conexões com contas de anúncio
type Connector interface {
	// Connect troca o código de autorização e persiste a credencial
	Connect(ctx context.Context, req *ConnectRequest) (*domain.PlatformCredential, error)

	// Disconnect desativa a credencial; purge remove campanhas e métricas
	Disconnect(ctx context.Context, teamID, credentialID string, purge bool) error

	// ListCredentials lista as credenciais ativas do time
	ListCredentials(teamID string, platform *domain.Platform) ([]*domain.PlatformCredential, error)
}

type Service struct {
	creds     repository.CredentialRepository
	campaigns repository.CampaignRepository
	registry  *platforms.Registry
}

func NewService(
	creds repository.CredentialRepository,
	campaigns repository.CampaignRepository,
	registry *platforms.Registry,
) Connector {
	return &Service{
		creds:     creds,
		campaigns: campaigns,
		registry:  registry,
	}
}

// Connect valida a entrada, troca o código de autorização na plataforma e
// persiste a credencial. Reconectar uma conta já existente atualiza os
// tokens e reativa a credencial
func (s *Service) Connect(ctx context.Context, req *ConnectRequest) (*domain.PlatformCredential, error) {
	if req.AuthCode == "" {
		return nil, &platforms.ValidationError{Field: "auth_code", Message: "código de autorização é obrigatório"}
	}
	if req.AccountID == "" {
		return nil, &platforms.ValidationError{Field: "account_id", Message: "identificador da conta é obrigatório"}
	}

	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		return nil, &platforms.ValidationError{Field: "platform", Message: err.Error()}
	}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	tokens, err := adapter.ExchangeCode(ctx, req.AuthCode)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"team_id":  req.TeamID,
			"platform": platform,
		}).WithError(err).Error("Erro ao trocar o código de autorização")
		return nil, err
	}

	cred := &domain.PlatformCredential{
		TeamID:      req.TeamID,
		Platform:    platform,
		AccountID:   req.AccountID,
		AccountName: req.AccountName,
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
		Active:      true,
	}
	if tokens.RefreshToken != "" {
		cred.RefreshToken = &tokens.RefreshToken
	}

	saved, err := s.creds.Save(cred)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":       req.TeamID,
		"platform":      platform,
		"credential_id": saved.ID,
		"account_id":    saved.AccountID,
	}).Info("Conta conectada com sucesso")

	return saved, nil
}

// Disconnect desativa a credencial, tornando-a invisível para o sync.
// Com purge, as campanhas do time na plataforma são removidas e as
// métricas caem em cascata
func (s *Service) Disconnect(ctx context.Context, teamID, credentialID string, purge bool) error {
	cred, err := s.creds.GetByID(credentialID)
	if err != nil {
		return err
	}
	if cred == nil || cred.TeamID != teamID {
		return ErrCredentialNotFound
	}

	if err := s.creds.MarkInactive(credentialID, "desconectada pelo usuário"); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":       teamID,
		"credential_id": credentialID,
		"platform":      cred.Platform,
	}).Info("Conta desconectada")

	if !purge {
		return nil
	}

	removed, err := s.campaigns.DeleteByTeamAndPlatform(teamID, cred.Platform)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":   teamID,
		"platform":  cred.Platform,
		"campaigns": removed,
	}).Warn("Dados sincronizados removidos a pedido do usuário")

	return nil
}

func (s *Service) ListCredentials(teamID string, platform *domain.Platform) ([]*domain.PlatformCredential, error) {
	return s.creds.GetActiveCredentials(teamID, platform)
}
