package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/adpilot/campaign-sync-api/internal/platforms"
)

// Policy é a política única de retry da aplicação, parametrizada pela
// taxonomia de erros das plataformas: TransientError usa backoff
// exponencial, RateLimitError espera a sugestão da plataforma e qualquer
// outro erro interrompe imediatamente
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy retorna a política padrão com o número de tentativas da config
func DefaultPolicy(maxAttempts int) Policy {
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// Do executa a operação aplicando a política.
// O contexto do chamador limita o tempo total de espera
func (p Policy) Do(ctx context.Context, op func() error) error {
	base := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		base.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		base.MaxInterval = p.MaxInterval
	}
	base.MaxElapsedTime = 0

	aware := &rateLimitAwareBackOff{delegate: base}

	operation := func() error {
		err := op()
		if err == nil {
			return nil
		}

		var rateLimit *platforms.RateLimitError
		if errors.As(err, &rateLimit) {
			aware.hint = rateLimit.RetryAfter
			return err
		}

		var transient *platforms.TransientError
		if errors.As(err, &transient) {
			return err
		}

		return backoff.Permanent(err)
	}

	maxRetries := uint64(p.MaxAttempts - 1)
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(aware, maxRetries), ctx))
}

// rateLimitAwareBackOff delega ao backoff exponencial, mas quando a última
// falha foi um rate limit com retry-after, respeita a sugestão da plataforma
// em vez do intervalo calculado
type rateLimitAwareBackOff struct {
	delegate backoff.BackOff
	hint     time.Duration
}

func (b *rateLimitAwareBackOff) NextBackOff() time.Duration {
	next := b.delegate.NextBackOff()
	if b.hint > 0 {
		next = b.hint
		b.hint = 0
	}
	return next
}

func (b *rateLimitAwareBackOff) Reset() {
	b.hint = 0
	b.delegate.Reset()
}
