package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/adpilot/campaign-sync-api/infrastructure/database/postgres"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/pkg/utils"
)

const (
	campaignsTable = "campaigns c"

	campaignColumns = "c.id, c.team_id, c.platform, c.external_id, c.credential_id, " +
		"c.name, c.status, c.budget, c.currency, c.raw_payload, c.created_at, c.updated_at"
)

// CampaignRepository persiste a projeção normalizada de campanhas.
// Escrita exclusiva do orquestrador de sync; a chave de upsert é
// (team_id, platform, external_id)
type CampaignRepository interface {
	Upsert(campaign *domain.Campaign) (*domain.Campaign, error)
	GetByID(id string) (*domain.Campaign, error)
	ListByTeam(teamID string, platform *domain.Platform) ([]*domain.Campaign, error)
	DeleteByTeamAndPlatform(teamID string, platform domain.Platform) (int64, error)
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

// Upsert insere ou atualiza a campanha e devolve a linha com o ID persistido.
// Reexecutar um sync sobre a mesma janela não cria duplicatas: o último
// sync vence (last-write-wins por tempo de sync)
func (r *campaignRepository) Upsert(campaign *domain.Campaign) (*domain.Campaign, error) {
	if campaign.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, fmt.Errorf("erro ao gerar ID: %w", err)
		}
		campaign.ID = id
	}

	query := squirrel.StatementBuilder.
		Insert("campaigns").
		Columns("id", "team_id", "platform", "external_id", "credential_id",
			"name", "status", "budget", "currency", "raw_payload").
		Values(
			campaign.ID,
			campaign.TeamID,
			campaign.Platform.String(),
			campaign.ExternalID,
			campaign.CredentialID,
			campaign.Name,
			string(campaign.Status),
			campaign.Budget,
			campaign.Currency,
			[]byte(campaign.RawPayload),
		).
		Suffix(`
			ON CONFLICT (team_id, platform, external_id) DO UPDATE SET
				credential_id = EXCLUDED.credential_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				budget = EXCLUDED.budget,
				currency = EXCLUDED.currency,
				raw_payload = EXCLUDED.raw_payload,
				updated_at = NOW()
			RETURNING id
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(sqlQuery, args...)
	if err := row.Scan(&campaign.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}

	return campaign, nil
}

func (r *campaignRepository) GetByID(id string) (*domain.Campaign, error) {
	query, args, err := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
		Where(squirrel.Eq{"c.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	campaign, err := r.scanCampaign(rows)
	if err != nil {
		return nil, fmt.Errorf("erro ao escanear campanha: %w", err)
	}

	return campaign, nil
}

func (r *campaignRepository) ListByTeam(teamID string, platform *domain.Platform) ([]*domain.Campaign, error) {
	builder := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
		Where(squirrel.Eq{"c.team_id": teamID}).
		OrderBy("c.platform ASC, c.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if platform != nil {
		builder = builder.Where(squirrel.Eq{"c.platform": platform.String()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		campaign, err := r.scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear campanhas: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return campaigns, nil
}

// DeleteByTeamAndPlatform remove as campanhas do time para a plataforma.
// Usado apenas pelo fluxo explícito de desconexão; o sync nunca deleta.
// As métricas associadas caem junto via ON DELETE CASCADE
func (r *campaignRepository) DeleteByTeamAndPlatform(teamID string, platform domain.Platform) (int64, error) {
	query, args, err := squirrel.
		Delete("campaigns").
		Where(squirrel.Eq{"team_id": teamID, "platform": platform.String()}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func (r *campaignRepository) scanCampaign(rows *sql.Rows) (*domain.Campaign, error) {
	campaign := &domain.Campaign{}
	var rawPlatform, rawStatus string
	var rawPayload []byte

	err := rows.Scan(
		&campaign.ID,
		&campaign.TeamID,
		&rawPlatform,
		&campaign.ExternalID,
		&campaign.CredentialID,
		&campaign.Name,
		&rawStatus,
		&campaign.Budget,
		&campaign.Currency,
		&rawPayload,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	platform, err := domain.ParsePlatform(rawPlatform)
	if err != nil {
		return nil, err
	}
	campaign.Platform = platform
	campaign.Status = domain.CampaignStatus(rawStatus)
	campaign.RawPayload = rawPayload

	return campaign, nil
}
