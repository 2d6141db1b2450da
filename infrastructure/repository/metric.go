package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/adpilot/campaign-sync-api/infrastructure/database/postgres"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/pkg/utils"
)

const (
	campaignMetricsTable = "campaign_metrics cm"

	metricColumns = "cm.id, cm.campaign_id, cm.external_id, cm.date, cm.impressions, " +
		"cm.clicks, cm.cost, cm.conversions, cm.revenue, cm.raw_payload, cm.created_at, cm.updated_at"
)

// MetricRepository persiste métricas diárias normalizadas.
// A chave natural é (campaign_id, date): reingestão sobrescreve, nunca duplica
type MetricRepository interface {
	Upsert(metric *domain.CampaignMetric) error
	GetByCampaignAndRange(campaignID string, window domain.DateRange) ([]*domain.CampaignMetric, error)
}

type metricRepository struct {
	conn *postgres.Connection
}

func NewMetricRepository(conn *postgres.Connection) MetricRepository {
	return &metricRepository{
		conn: conn,
	}
}

func (r *metricRepository) Upsert(metric *domain.CampaignMetric) error {
	if metric.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("erro ao gerar ID: %w", err)
		}
		metric.ID = id
	}

	query := squirrel.StatementBuilder.
		Insert("campaign_metrics").
		Columns("id", "campaign_id", "external_id", "date", "impressions",
			"clicks", "cost", "conversions", "revenue", "raw_payload").
		Values(
			metric.ID,
			metric.CampaignID,
			metric.ExternalID,
			metric.Date.Format("2006-01-02"),
			metric.Impressions,
			metric.Clicks,
			metric.Cost,
			metric.Conversions,
			metric.Revenue,
			[]byte(metric.RawPayload),
		).
		Suffix(`
			ON CONFLICT (campaign_id, date) DO UPDATE SET
				external_id = EXCLUDED.external_id,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				cost = EXCLUDED.cost,
				conversions = EXCLUDED.conversions,
				revenue = EXCLUDED.revenue,
				raw_payload = EXCLUDED.raw_payload,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *metricRepository) GetByCampaignAndRange(campaignID string, window domain.DateRange) ([]*domain.CampaignMetric, error) {
	query, args, err := squirrel.
		Select(metricColumns).
		From(campaignMetricsTable).
		Where(squirrel.Eq{"cm.campaign_id": campaignID}).
		Where(squirrel.GtOrEq{"cm.date": window.Start.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"cm.date": window.End.Format("2006-01-02")}).
		OrderBy("cm.date ASC").
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

	metrics := make([]*domain.CampaignMetric, 0)
	for rows.Next() {
		metric, err := r.scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear métricas: %w", err)
		}
		metrics = append(metrics, metric)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return metrics, nil
}

func (r *metricRepository) scanMetric(rows *sql.Rows) (*domain.CampaignMetric, error) {
	metric := &domain.CampaignMetric{}
	var rawPayload []byte
	var date time.Time

	err := rows.Scan(
		&metric.ID,
		&metric.CampaignID,
		&metric.ExternalID,
		&date,
		&metric.Impressions,
		&metric.Clicks,
		&metric.Cost,
		&metric.Conversions,
		&metric.Revenue,
		&rawPayload,
		&metric.CreatedAt,
		&metric.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	metric.Date = date
	metric.RawPayload = rawPayload

	return metric, nil
}
