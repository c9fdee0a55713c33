package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

const defaultTTL = 24 * time.Hour

// Имена категорий в сохранённом ответе с ошибкой.
const (
	kindInvalidArgument = "invalid_argument"
	kindOutOfRange      = "out_of_range"
	kindInvalidState    = "invalid_state"
	kindNotFound        = "not_found"
	kindConflict        = "conflict"
	kindInternal        = "internal"
)

// Guard выполняет команду не больше одного раза на idempotency-key
// и отдаёт сохранённый результат при повторе.
type Guard struct {
	repo    domain.IdempotencyRepository
	ttl     time.Duration
	logger  *log.Entry
	metrics *metrics.SalesMetrics
	now     func() time.Time
}

// NewGuard создаёт Guard. ttl <= 0 заменяется на 24 часа.
func NewGuard(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry, m *metrics.SalesMetrics) *Guard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "idempotency-guard")
	}
	return &Guard{
		repo:    repo,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ReplayedError — ошибка первого запроса, восстановленная из хранилища.
// Unwrap возвращает доменную категорию, чтобы транспорт выбрал тот же код ответа.
type ReplayedError struct {
	Kind    error
	Message string
}

func (e *ReplayedError) Error() string {
	return e.Message
}

func (e *ReplayedError) Unwrap() error {
	return e.Kind
}

type failurePayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Do выполняет handler с защитой по ключу. Пустой ключ или отсутствие репозитория
// означают обычное выполнение без сохранения результата.
func Do[T any](ctx context.Context, g *Guard, key, operation string, request any, handler func(context.Context) (T, error)) (T, error) {
	var zero T

	key = strings.TrimSpace(key)
	if g == nil || g.repo == nil || key == "" {
		return handler(ctx)
	}

	hash, err := requestHash(operation, request)
	if err != nil {
		return zero, fmt.Errorf("build idempotency request hash: %w", err)
	}

	record, err := g.repo.CreateProcessing(ctx, key, hash, g.now().Add(g.ttl))
	if err != nil {
		return replay[T](g, err, record)
	}

	resp, runErr := handler(ctx)

	// Результат сохраняем даже если клиент уже отключился.
	storeCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		if replayable(runErr) {
			g.storeFailure(storeCtx, key, runErr)
		} else {
			g.release(storeCtx, key, runErr)
		}
		return resp, runErr
	}

	body, err := json.Marshal(resp)
	if err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to encode idempotent response")
		return resp, nil
	}
	if err := g.repo.MarkDone(storeCtx, key, body); err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent success response")
	}
	return resp, nil
}

func replay[T any](g *Guard, createErr error, record domain.IdempotencyRecord) (T, error) {
	var zero T

	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return zero, domain.ErrIdempotencyHashMismatch
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		g.metrics.RecordIdempotentReplay(string(record.Status))
		switch record.Status {
		case domain.IdempotencyStatusDone:
			var resp T
			if err := json.Unmarshal(record.ResponseBody, &resp); err != nil {
				g.logger.WithError(err).WithField("idempotency_key", record.Key).Warn("failed to decode cached idempotency response")
				return zero, fmt.Errorf("decode cached idempotency response: %w", err)
			}
			return resp, nil
		case domain.IdempotencyStatusProcessing:
			return zero, domain.ErrIdempotencyInProgress
		case domain.IdempotencyStatusFailed:
			return zero, decodeFailure(record)
		default:
			return zero, fmt.Errorf("unknown idempotency record status %q", record.Status)
		}
	default:
		g.logger.WithError(createErr).Warn("failed to create idempotency record")
		return zero, fmt.Errorf("create idempotency record: %w", createErr)
	}
}

// replayable сообщает, повторится ли ошибка при повторном выполнении того же запроса.
// Конфликты, ошибки контекста и инфраструктуры временные: ключ для них освобождается.
func replayable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch domain.KindOf(err) {
	case domain.ErrInvalidArgument, domain.ErrOutOfRange, domain.ErrInvalidState, domain.ErrNotFound:
		return true
	default:
		return false
	}
}

func (g *Guard) release(ctx context.Context, key string, runErr error) {
	if err := g.repo.Release(ctx, key); err != nil {
		g.logger.WithError(err).WithFields(log.Fields{
			"idempotency_key": key,
			"cause":           runErr.Error(),
		}).Warn("failed to release idempotency key")
	}
}

func (g *Guard) storeFailure(ctx context.Context, key string, runErr error) {
	payload, err := json.Marshal(failurePayload{
		Kind:    kindName(domain.KindOf(runErr)),
		Message: runErr.Error(),
	})
	if err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to encode idempotency failure payload")
		payload = nil
	}
	if err := g.repo.MarkFailed(ctx, key, payload); err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotency failure response")
	}
}

func decodeFailure(record domain.IdempotencyRecord) error {
	var payload failurePayload
	if len(record.ResponseBody) > 0 {
		_ = json.Unmarshal(record.ResponseBody, &payload)
	}
	if payload.Message == "" {
		payload.Message = "previous request with the same idempotency key failed"
	}
	return &ReplayedError{Kind: kindFromName(payload.Kind), Message: payload.Message}
}

func kindName(kind error) string {
	switch kind {
	case domain.ErrInvalidArgument:
		return kindInvalidArgument
	case domain.ErrOutOfRange:
		return kindOutOfRange
	case domain.ErrInvalidState:
		return kindInvalidState
	case domain.ErrNotFound:
		return kindNotFound
	case domain.ErrConflict:
		return kindConflict
	default:
		return kindInternal
	}
}

func kindFromName(name string) error {
	switch name {
	case kindInvalidArgument:
		return domain.ErrInvalidArgument
	case kindOutOfRange:
		return domain.ErrOutOfRange
	case kindInvalidState:
		return domain.ErrInvalidState
	case kindNotFound:
		return domain.ErrNotFound
	case kindConflict:
		return domain.ErrConflict
	default:
		return nil
	}
}

func requestHash(operation string, request any) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, len(operation)+1+len(data))
	payload = append(payload, operation...)
	payload = append(payload, ':')
	payload = append(payload, data...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
