package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Транспорты до хоста
const (
	TransportHTTP     = "http"
	TransportGRPC     = "grpc"
	TransportDetached = "detached"
)

// EnvPrefix - префикс переменных окружения
const EnvPrefix = "VEHPROP_"

var ErrInvalidConfig = errors.New("invalid config")

// ScreenConfig - размер экрана для проб, если представление его не передало
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config содержит настройки контроллера оверлея
type Config struct {
	// ListenAddr - адрес HTTP сервера для WebSocket каналов
	ListenAddr string `yaml:"listen_addr"`

	// Transport - способ доставки вызовов хосту: http, grpc или detached
	Transport string `yaml:"transport"`

	// HostBaseURL - базовый адрес для HTTP транспорта
	HostBaseURL string `yaml:"host_base_url"`

	// GRPCAddr - адрес хоста для gRPC транспорта
	GRPCAddr string `yaml:"grpc_addr"`

	// RequestTimeout - таймаут одного вызова хоста
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// QueueSize - длина очереди исходящих вызовов и очереди событий
	QueueSize int `yaml:"queue_size"`

	// DragThreshold - порог перетаскивания в пикселях
	DragThreshold float64 `yaml:"drag_threshold"`

	// ToggleKey - клавиша переключения свободной камеры
	ToggleKey string `yaml:"toggle_key"`

	// CloseKey - клавиша закрытия оверлея
	CloseKey string `yaml:"close_key"`

	DefaultScreen ScreenConfig `yaml:"default_screen"`

	Debug bool `yaml:"debug"`

	// TelemetryBuffer - сколько последних вызовов хранит телеметрия
	TelemetryBuffer int `yaml:"telemetry_buffer"`
}

var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		ListenAddr:      ":8090",
		Transport:       TransportHTTP,
		HostBaseURL:     "https://srp-vehprop",
		GRPCAddr:        "localhost:50061",
		RequestTimeout:  2 * time.Second,
		QueueSize:       256,
		DragThreshold:   2,
		ToggleKey:       "Shift",
		CloseKey:        "Escape",
		DefaultScreen:   ScreenConfig{Width: 1920, Height: 1080},
		TelemetryBuffer: 200,
	}
}

// Load читает YAML файл поверх значений по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv переопределяет поля из переменных окружения VEHPROP_*
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("LISTEN_ADDR", &c.ListenAddr)
	str("TRANSPORT", &c.Transport)
	str("HOST_BASE_URL", &c.HostBaseURL)
	str("GRPC_ADDR", &c.GRPCAddr)
	str("TOGGLE_KEY", &c.ToggleKey)
	str("CLOSE_KEY", &c.CloseKey)
	num("QUEUE_SIZE", &c.QueueSize)
	num("TELEMETRY_BUFFER", &c.TelemetryBuffer)
	num("SCREEN_WIDTH", &c.DefaultScreen.Width)
	num("SCREEN_HEIGHT", &c.DefaultScreen.Height)

	if v, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUEST_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.RequestTimeout = d
		}
	}
	if v, ok := lookup(EnvPrefix + "DRAG_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDRAG_THRESHOLD: %w", EnvPrefix, err))
		} else {
			c.DragThreshold = f
		}
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEBUG: %w", EnvPrefix, err))
		} else {
			c.Debug = b
		}
	}

	return errors.Join(errs...)
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var problems []string

	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case TransportHTTP:
		if c.HostBaseURL == "" {
			problems = append(problems, "host_base_url is required for http transport")
		}
	case TransportGRPC:
		if c.GRPCAddr == "" {
			problems = append(problems, "grpc_addr is required for grpc transport")
		}
	case TransportDetached:
	default:
		problems = append(problems, fmt.Sprintf("unknown transport %q", c.Transport))
	}

	if c.ListenAddr == "" {
		problems = append(problems, "listen_addr is required")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.QueueSize <= 0 {
		problems = append(problems, "queue_size must be positive")
	}
	// 0 в оверлее означает значение по умолчанию, поэтому явный 0 отклоняется
	if c.DragThreshold <= 0 {
		problems = append(problems, "drag_threshold must be positive")
	}
	if c.ToggleKey == "" || c.CloseKey == "" {
		problems = append(problems, "toggle_key and close_key are required")
	}
	if c.ToggleKey != "" && strings.EqualFold(c.ToggleKey, c.CloseKey) {
		problems = append(problems, "toggle_key and close_key must differ")
	}
	if c.DefaultScreen.Width <= 0 || c.DefaultScreen.Height <= 0 {
		problems = append(problems, "default_screen must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Detached сообщает, работает ли оверлей без хоста
func (c *Config) Detached() bool {
	return c.Transport == TransportDetached
}

// Get возвращает копию текущей конфигурации
func Get() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return Default()
	}

	// Копия, чтобы избежать гонок данных
	cfg := *globalConfig
	return &cfg
}

// Set устанавливает текущую конфигурацию процесса
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	newConfig := *cfg
	globalConfig = &newConfig
}
