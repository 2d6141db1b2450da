package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/adpilot/campaign-sync-api/infrastructure/database/postgres"
	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/pkg/utils"
)

const (
	platformCredentialsTable = "platform_credentials pc"

	credentialColumns = "pc.id, pc.team_id, pc.platform, pc.account_id, pc.account_name, " +
		"pc.access_token, pc.refresh_token, pc.expires_at, pc.scope, pc.active, " +
		"pc.last_synced_at, pc.last_error, pc.created_at, pc.updated_at"
)

// ErrConcurrentModification indica que o compare-and-set de tokens falhou:
// outra renovação persistiu tokens mais novos entre a leitura e a escrita.
// O chamador deve reler a credencial e tentar no máximo mais uma vez
var ErrConcurrentModification = errors.New("credencial modificada concorrentemente")

// CredentialRepository é o dono exclusivo das linhas de platform_credentials
type CredentialRepository interface {
	GetActiveCredentials(teamID string, platform *domain.Platform) ([]*domain.PlatformCredential, error)
	GetByID(id string) (*domain.PlatformCredential, error)
	Save(cred *domain.PlatformCredential) (*domain.PlatformCredential, error)
	UpdateTokens(id string, observed, next domain.TokenSet) error
	MarkInactive(id, reason string) error
	TouchSync(id string, syncedAt time.Time) error
	ListTeamsWithActiveCredentials() ([]string, error)
	ListActivePlatforms(teamID string) ([]domain.Platform, error)
}

type credentialRepository struct {
	conn *postgres.Connection
}

func NewCredentialRepository(conn *postgres.Connection) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

// GetActiveCredentials retorna apenas credenciais com active = true.
// Credenciais desativadas ficam invisíveis para o sync até reconexão manual
func (r *credentialRepository) GetActiveCredentials(teamID string, platform *domain.Platform) ([]*domain.PlatformCredential, error) {
	builder := squirrel.
		Select(credentialColumns).
		From(platformCredentialsTable).
		Where(squirrel.Eq{"pc.team_id": teamID, "pc.active": true}).
		OrderBy("pc.platform ASC, pc.account_id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if platform != nil {
		builder = builder.Where(squirrel.Eq{"pc.platform": platform.String()})
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

	credentials := make([]*domain.PlatformCredential, 0)
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear credencial: %w", err)
		}
		credentials = append(credentials, cred)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return credentials, nil
}

func (r *credentialRepository) GetByID(id string) (*domain.PlatformCredential, error) {
	query, args, err := squirrel.
		Select(credentialColumns).
		From(platformCredentialsTable).
		Where(squirrel.Eq{"pc.id": id}).
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

	cred, err := r.scanCredential(rows)
	if err != nil {
		return nil, fmt.Errorf("erro ao escanear credencial: %w", err)
	}

	return cred, nil
}

// Save cria ou atualiza a credencial respeitando a unicidade em
// (team_id, platform, account_id). Reconectar uma conta reativa a linha
func (r *credentialRepository) Save(cred *domain.PlatformCredential) (*domain.PlatformCredential, error) {
	if cred.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, fmt.Errorf("erro ao gerar ID: %w", err)
		}
		cred.ID = id
	}

	query := squirrel.StatementBuilder.
		Insert("platform_credentials").
		Columns("id", "team_id", "platform", "account_id", "account_name",
			"access_token", "refresh_token", "expires_at", "scope", "active").
		Values(
			cred.ID,
			cred.TeamID,
			cred.Platform.String(),
			cred.AccountID,
			cred.AccountName,
			cred.AccessToken,
			cred.RefreshToken,
			cred.ExpiresAt,
			cred.Scope,
			true,
		).
		Suffix(`
			ON CONFLICT (team_id, platform, account_id) DO UPDATE SET
				account_name = EXCLUDED.account_name,
				access_token = EXCLUDED.access_token,
				refresh_token = EXCLUDED.refresh_token,
				expires_at = EXCLUDED.expires_at,
				scope = EXCLUDED.scope,
				active = TRUE,
				last_error = NULL,
				updated_at = NOW()
			RETURNING id
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(sqlQuery, args...)
	if err := row.Scan(&cred.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}

	return cred, nil
}

// UpdateTokens é um compare-and-set: só aplica os novos tokens se os valores
// observados pelo chamador ainda forem os persistidos. Impede que uma
// renovação atrasada sobrescreva tokens mais novos de outra renovação
func (r *credentialRepository) UpdateTokens(id string, observed, next domain.TokenSet) error {
	query, args, err := squirrel.
		Update("platform_credentials").
		Set("access_token", next.AccessToken).
		Set("refresh_token", nullableString(next.RefreshToken)).
		Set("expires_at", next.ExpiresAt).
		Set("scope", next.Scope).
		Set("last_error", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "access_token": observed.AccessToken}).
		Where(squirrel.Expr("COALESCE(refresh_token, '') = ?", observed.RefreshToken)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	if rowsAffected == 0 {
		return ErrConcurrentModification
	}

	return nil
}

// MarkInactive desativa a credencial e registra o motivo. Passes de sync
// subsequentes passam a ignorá-la até que um humano reconecte a conta
func (r *credentialRepository) MarkInactive(id, reason string) error {
	query, args, err := squirrel.
		Update("platform_credentials").
		Set("active", false).
		Set("last_error", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// TouchSync registra a conclusão de um sync bem-sucedido,
// independente do estado dos tokens
func (r *credentialRepository) TouchSync(id string, syncedAt time.Time) error {
	query, args, err := squirrel.
		Update("platform_credentials").
		Set("last_synced_at", syncedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *credentialRepository) ListTeamsWithActiveCredentials() ([]string, error) {
	query, args, err := squirrel.
		Select("DISTINCT pc.team_id").
		From(platformCredentialsTable).
		Where(squirrel.Eq{"pc.active": true}).
		OrderBy("pc.team_id ASC").
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

	teams := make([]string, 0)
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("erro ao escanear team_id: %w", err)
		}
		teams = append(teams, teamID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return teams, nil
}

func (r *credentialRepository) ListActivePlatforms(teamID string) ([]domain.Platform, error) {
	query, args, err := squirrel.
		Select("DISTINCT pc.platform").
		From(platformCredentialsTable).
		Where(squirrel.Eq{"pc.team_id": teamID, "pc.active": true}).
		OrderBy("pc.platform ASC").
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

	platforms := make([]domain.Platform, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("erro ao escanear plataforma: %w", err)
		}
		platform, err := domain.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, platform)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return platforms, nil
}

func (r *credentialRepository) scanCredential(rows *sql.Rows) (*domain.PlatformCredential, error) {
	cred := &domain.PlatformCredential{}
	var rawPlatform string
	var refreshToken sql.NullString
	var expiresAt, lastSyncedAt sql.NullTime
	var lastError sql.NullString

	err := rows.Scan(
		&cred.ID,
		&cred.TeamID,
		&rawPlatform,
		&cred.AccountID,
		&cred.AccountName,
		&cred.AccessToken,
		&refreshToken,
		&expiresAt,
		&cred.Scope,
		&cred.Active,
		&lastSyncedAt,
		&lastError,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	platform, err := domain.ParsePlatform(rawPlatform)
	if err != nil {
		return nil, err
	}
	cred.Platform = platform

	if refreshToken.Valid {
		cred.RefreshToken = &refreshToken.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		cred.ExpiresAt = &t
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		cred.LastSyncedAt = &t
	}
	if lastError.Valid {
		cred.LastError = &lastError.String
	}

	return cred, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
