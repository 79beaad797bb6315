package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/competition-system/db"
	"github.com/lib/pq"
)

const (
	txMaxAttempts = 3
	txRetryDelay  = 50 * time.Millisecond
)

// withTxRetry выполняет fn в транзакции, повторяя только транзиентные
// конфликты хранилища (serialization failure, deadlock). Бизнес-ошибки
// никогда не повторяются. После исчерпания попыток возвращается
// ErrServiceUnavailable.
func withTxRetry(ctx context.Context, tm db.TxManager, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = tm.Do(ctx, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryDelay):
		}
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// GetExtensionFromContentType подбирает расширение файла для ключа в хранилище.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
