// pkg/health/checkers.go
package health

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"github.com/redis/go-redis/v9"
)

// RedisChecker проверка соединения с Redis
func RedisChecker(client redis.UniversalClient) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		if err := client.Ping(ctx).Err(); err != nil {
			return CheckResult{Status: StatusDown, Error: err.Error()}
		}
		return CheckResult{Status: StatusUp}
	})
}

// SQLChecker проверка соединения с базой
func SQLChecker(db *sql.DB) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		if err := db.PingContext(ctx); err != nil {
			return CheckResult{Status: StatusDown, Error: err.Error()}
		}
		stats := db.Stats()
		return CheckResult{
			Status: StatusUp,
			Details: map[string]any{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
			},
		}
	})
}

// MemoryChecker проверка занятой кучи
func MemoryChecker(maxHeapBytes uint64) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		details := map[string]any{
			"heap_alloc":     m.HeapAlloc,
			"max_heap_bytes": maxHeapBytes,
			"goroutines":     runtime.NumGoroutine(),
		}
		if maxHeapBytes > 0 && m.HeapAlloc > maxHeapBytes {
			return CheckResult{
				Status:  StatusDown,
				Error:   fmt.Sprintf("heap usage %d exceeds %d", m.HeapAlloc, maxHeapBytes),
				Details: details,
			}
		}
		return CheckResult{Status: StatusUp, Details: details}
	})
}

// CustomChecker создает проверку с простой функцией
func CustomChecker(name string, check func() error) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		if err := check(); err != nil {
			return CheckResult{
				Status:  StatusDown,
				Error:   err.Error(),
				Details: map[string]any{"check": name},
			}
		}
		return CheckResult{
			Status: StatusUp,
		}
	})
}
