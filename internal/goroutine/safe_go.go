package goroutine

import (
	"runtime/debug"

	"github.com/ignatzorin/homeservice-backend/internal/logger"
)

// SafeGo запускает fn в отдельной горутине с перехватом panic: падение
// фоновой задачи логируется со стеком и не роняет процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithField("stack", string(debug.Stack())).
					Errorf("panic в фоновой горутине: %v", r)
			}
		}()
		fn()
	}()
}
