package config

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Store хранит текущую неизменяемую конфигурацию.
// Перезагрузка строит новый *Config и подменяет ссылку под одной блокировкой;
// уже выданные *Config никогда не мутируются.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
}

// NewStore загружает конфигурацию и возвращает Store
func NewStore() (*Store, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, v: v}, nil
}

// NewStaticStore оборачивает готовую конфигурацию (тесты, CLI)
func NewStaticStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Current возвращает актуальный снимок конфигурации
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Swap атомарно подменяет конфигурацию
func (s *Store) Swap(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Watch перечитывает .env при изменении файла
func (s *Store) Watch(logger *zap.Logger) {
	if s.v == nil {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		cfg := fromViper(s.v)
		s.Swap(cfg)
		logger.Info("Configuration reloaded", zap.String("file", e.Name))
	})
	s.v.WatchConfig()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
