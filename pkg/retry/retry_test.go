package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adpilot/campaign-sync-api/internal/domain"
	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: 1 * time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestPolicy_Do(t *testing.T) {
	tests := []struct {
		name         string
		policy       Policy
		fail         func(attempt int) error
		wantAttempts int
		wantErr      bool
	}{
		{
			name:   "Erro transitório - retenta até o sucesso",
			policy: fastPolicy(4),
			fail: func(attempt int) error {
				if attempt < 3 {
					return &platforms.TransientError{
						Platform: domain.PlatformGoogle,
						Err:      errors.New("timeout de rede"),
					}
				}
				return nil
			},
			wantAttempts: 3,
			wantErr:      false,
		},
		{
			name:   "Erro transitório persistente - esgota as tentativas",
			policy: fastPolicy(3),
			fail: func(attempt int) error {
				return &platforms.TransientError{
					Platform: domain.PlatformGoogle,
					Err:      errors.New("timeout de rede"),
				}
			},
			wantAttempts: 3,
			wantErr:      true,
		},
		{
			name:   "Erro de API da plataforma - interrompe sem retentar",
			policy: fastPolicy(4),
			fail: func(attempt int) error {
				return &platforms.PlatformAPIError{
					Platform:   domain.PlatformGoogle,
					StatusCode: 400,
					Body:       "requisição malformada",
				}
			},
			wantAttempts: 1,
			wantErr:      true,
		},
		{
			name:   "Erro de autorização - interrompe sem retentar",
			policy: fastPolicy(4),
			fail: func(attempt int) error {
				return &platforms.RefreshError{
					Platform: domain.PlatformGoogle,
					Reason:   "invalid_grant",
				}
			},
			wantAttempts: 1,
			wantErr:      true,
		},
		{
			name:   "Rate limit - retenta respeitando a sugestão da plataforma",
			policy: fastPolicy(4),
			fail: func(attempt int) error {
				if attempt < 2 {
					return &platforms.RateLimitError{
						Platform:   domain.PlatformGoogle,
						RetryAfter: 2 * time.Millisecond,
					}
				}
				return nil
			},
			wantAttempts: 2,
			wantErr:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := tt.policy.Do(context.Background(), func() error {
				attempts++
				return tt.fail(attempts)
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_Do_contextoCanceladoInterrompeAEspera(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	policy := Policy{
		MaxAttempts:     5,
		InitialInterval: 1 * time.Hour,
		MaxInterval:     1 * time.Hour,
	}

	err := policy.Do(ctx, func() error {
		attempts++
		cancel()
		return &platforms.TransientError{
			Platform: domain.PlatformGoogle,
			Err:      errors.New("timeout de rede"),
		}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestPolicy_Do_sugestaoDeRateLimitSobrepoeOIntervalo(t *testing.T) {
	hint := 30 * time.Millisecond
	policy := Policy{
		MaxAttempts:     2,
		InitialInterval: 1 * time.Millisecond,
		MaxInterval:     1 * time.Millisecond,
	}

	attempts := 0
	start := time.Now()
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return &platforms.RateLimitError{
				Platform:   domain.PlatformKakao,
				RetryAfter: hint,
			}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.GreaterOrEqual(t, time.Since(start), hint)
}
