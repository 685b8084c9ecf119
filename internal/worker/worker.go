// Package worker - фоновые обработчики очередей задач (Redis streams).
package worker

import "context"

// Worker - долгоживущий обработчик; Start блокируется до Stop или отмены ctx
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}
