package resilience

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = crerr.New("circuit breaker is open")

// CircuitBreaker guards one upstream. A disabled breaker runs every call straight through.
type CircuitBreaker struct {
	cb      *gobreaker.CircuitBreaker
	enabled bool
}

// NewCircuitBreaker trips after FailureThreshold consecutive failures. isFailure decides
// which errors count against the upstream; nil counts every error.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, isFailure func(error) bool, logger *logging.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = NormalizeCircuitBreakerConfig(cfg)
	threshold := uint32(cfg.FailureThreshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(cfg.HalfOpenMaxReq),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	if isFailure != nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || !isFailure(err)
		}
	}

	return &CircuitBreaker{
		cb:      gobreaker.NewCircuitBreaker(settings),
		enabled: cfg.Enabled,
	}
}

// Execute runs fn under the breaker. Rejections are reported as ErrCircuitOpen.
func (b *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	if b == nil || !b.enabled {
		return fn()
	}
	out, err := b.cb.Execute(fn)
	if crerr.Is(err, gobreaker.ErrOpenState) || crerr.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, crerr.Mark(crerr.Wrapf(err, "breaker %s", b.cb.Name()), ErrCircuitOpen)
	}
	return out, err
}

func (b *CircuitBreaker) State() string {
	if b == nil || !b.enabled {
		return "disabled"
	}
	return b.cb.State().String()
}
