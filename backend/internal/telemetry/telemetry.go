package telemetry

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"vehprop/backend/internal/core/port/out/host"
	"vehprop/backend/internal/logging"
)

// Исходы вызова
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// CallRecord - запись об одном исходящем вызове
type CallRecord struct {
	Timestamp int64   `json:"timestamp"` // Время в миллисекундах
	Action    string  `json:"action"`
	Outcome   string  `json:"outcome"`
	TookMs    float64 `json:"took_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// ActionCounters - счетчики по одному действию
type ActionCounters struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Dropped int `json:"dropped"`
}

// Report - содержимое отладочной выгрузки
type Report struct {
	Totals map[string]ActionCounters `json:"totals"`
	Recent []CallRecord              `json:"recent"`
}

// Manager собирает телеметрию исходящих вызовов
type Manager struct {
	enabled    bool
	data       []CallRecord
	mutex      sync.RWMutex
	maxEntries int

	totals map[string]ActionCounters

	// Счетчики с момента последней сводки
	counters      map[string]int
	lastPrint     time.Time
	printInterval time.Duration

	log logging.Logger
	now func() time.Time
}

// NewManager создает менеджер, хранящий последние maxEntries вызовов
func NewManager(maxEntries int, log logging.Logger) *Manager {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Manager{
		enabled:       true,
		data:          make([]CallRecord, 0, maxEntries),
		maxEntries:    maxEntries,
		totals:        make(map[string]ActionCounters),
		counters:      make(map[string]int),
		lastPrint:     time.Now(),
		printInterval: 10 * time.Second,
		log:           logging.OrNop(log),
		now:           time.Now,
	}
}

func (tm *Manager) record(action host.Action, outcome string, took time.Duration, err error) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if !tm.enabled {
		return
	}

	entry := CallRecord{
		Timestamp: tm.now().UnixMilli(),
		Action:    string(action),
		Outcome:   outcome,
	}
	if took > 0 {
		entry.TookMs = float64(took.Microseconds()) / 1000
	}
	if err != nil {
		entry.Error = err.Error()
	}

	tm.data = append(tm.data, entry)
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[len(tm.data)-tm.maxEntries:]
	}

	c := tm.totals[entry.Action]
	switch outcome {
	case OutcomeSent:
		c.Sent++
	case OutcomeFailed:
		c.Failed++
	case OutcomeDropped:
		c.Dropped++
	}
	tm.totals[entry.Action] = c
	tm.counters[entry.Action+"_"+outcome]++
}

// CallSent записывает успешный вызов
func (tm *Manager) CallSent(action host.Action, took time.Duration) {
	tm.record(action, OutcomeSent, took, nil)
}

// CallFailed записывает ошибку транспорта
func (tm *Manager) CallFailed(action host.Action, err error) {
	tm.record(action, OutcomeFailed, 0, err)
}

// CallDropped записывает вызов, отброшенный при переполнении очереди
func (tm *Manager) CallDropped(action host.Action) {
	tm.record(action, OutcomeDropped, 0, nil)
}

// PrintSummary выводит сводку, если с прошлой прошло printInterval
func (tm *Manager) PrintSummary() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if !tm.enabled {
		return
	}

	now := tm.now()
	if now.Sub(tm.lastPrint) < tm.printInterval {
		return
	}
	tm.lastPrint = now

	if len(tm.counters) == 0 {
		return
	}

	keys := make([]string, 0, len(tm.counters))
	for k := range tm.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tm.log.Infof("calls since last summary: %d kinds, %d buffered", len(keys), len(tm.data))
	for _, k := range keys {
		tm.log.Infof("  %s: %d", k, tm.counters[k])
	}
	tm.counters = make(map[string]int)
}

// Snapshot возвращает копию накопленных данных
func (tm *Manager) Snapshot() Report {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	totals := make(map[string]ActionCounters, len(tm.totals))
	for k, v := range tm.totals {
		totals[k] = v
	}
	return Report{
		Totals: totals,
		Recent: append([]CallRecord(nil), tm.data...),
	}
}

// GetTelemetryJSON возвращает телеметрию в JSON формате
func (tm *Manager) GetTelemetryJSON() (string, error) {
	jsonData, err := json.MarshalIndent(tm.Snapshot(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// SetEnabled включает/выключает телеметрию
func (tm *Manager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	tm.log.Infof("telemetry %s", map[bool]string{true: "enabled", false: "disabled"}[enabled])
}

// Clear очищает все данные телеметрии
func (tm *Manager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]CallRecord, 0, tm.maxEntries)
	tm.totals = make(map[string]ActionCounters)
	tm.counters = make(map[string]int)
}
