package app

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"
)

// ChangeHandler is called when the configuration file changes. It receives
// the updated viper instance.
type ChangeHandler func(v *viper.Viper) error

// Watcher watches the configuration file and notifies subscribed handlers
// on change. Handlers run sequentially; a failing handler does not stop the
// others.
type Watcher struct {
	viper    *viper.Viper
	handlers map[string]ChangeHandler
	mu       sync.RWMutex
	watching bool
}

// NewWatcher creates a watcher over the global viper instance, which the
// application bootstrapper has already pointed at the loaded config file.
func NewWatcher() *Watcher {
	return &Watcher{
		viper:    viper.GetViper(),
		handlers: make(map[string]ChangeHandler),
	}
}

// Subscribe registers a change handler under id, replacing any existing
// handler with the same id.
func (w *Watcher) Subscribe(id string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[id] = handler
}

// Unsubscribe removes the handler registered under id.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.handlers, id)
}

// Start begins watching. Idempotent.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Infow("Config file changed", "file", e.Name)

		w.mu.RLock()
		handlers := make(map[string]ChangeHandler, len(w.handlers))
		for id, handler := range w.handlers {
			handlers[id] = handler
		}
		w.mu.RUnlock()

		for id, handler := range handlers {
			if err := handler(w.viper); err != nil {
				logger.Errorw("Config change handler failed", "handler", id, "error", err)
			}
		}
	})
	w.viper.WatchConfig()
}

// IsWatching reports whether Start has been called.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// HandlerCount returns the number of registered handlers.
func (w *Watcher) HandlerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.handlers)
}
