package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayEvent represents a step in the life of one gateway request
type GatewayEvent struct {
	EventType      EventType              `json:"event_type"`
	Operation      string                 `json:"operation"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageURL       string                 `json:"image_url"`
	ProcessingTime time.Duration          `json:"processing_time"`
	StatusCode     int                    `json:"status_code,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of gateway event
type EventType string

const (
	// RequestStarted when the provider call is about to be made
	RequestStarted EventType = "request_started"
	// RequestCompleted when the provider call succeeded
	RequestCompleted EventType = "request_completed"
	// RequestFailed when validation or the provider call failed
	RequestFailed EventType = "request_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event GatewayEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event GatewayEvent)
}

// LoggingObserver logs gateway events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles gateway events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event GatewayEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"operation":  event.Operation,
		"image_url":  event.ImageURL,
	}

	if event.ProcessingTime > 0 {
		fields["processing_time_ms"] = event.ProcessingTime.Milliseconds()
	}
	if event.StatusCode != 0 {
		fields["status_code"] = event.StatusCode
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case RequestStarted:
		o.logger.WithFields(fields).Debug("Gateway request started")
	case RequestCompleted:
		o.logger.WithFields(fields).Info("Gateway request completed")
	case RequestFailed:
		o.logger.WithFields(fields).Warn("Gateway request failed")
	default:
		o.logger.WithFields(fields).Info("Gateway event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// OperationStats are the counters kept for one operation
type OperationStats struct {
	Total             int64   `json:"total"`
	Succeeded         int64   `json:"succeeded"`
	Failed            int64   `json:"failed"`
	AvgProcessingTime float64 `json:"avg_processing_time_ms"`
}

type operationCounters struct {
	total, succeeded, failed int64
	processingTime           time.Duration
}

// MetricsObserver collects per-operation request counters
type MetricsObserver struct {
	mu         sync.RWMutex
	operations map[string]*operationCounters
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		operations: make(map[string]*operationCounters),
	}
}

// OnEvent handles gateway events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event GatewayEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.operations[event.Operation]
	if !ok {
		c = &operationCounters{}
		o.operations[event.Operation] = c
	}

	switch event.EventType {
	case RequestStarted:
		c.total++
	case RequestCompleted:
		c.succeeded++
		c.processingTime += event.ProcessingTime
	case RequestFailed:
		c.failed++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a snapshot of the counters keyed by operation
func (o *MetricsObserver) GetMetrics() map[string]OperationStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snapshot := make(map[string]OperationStats, len(o.operations))
	for name, c := range o.operations {
		stats := OperationStats{
			Total:     c.total,
			Succeeded: c.succeeded,
			Failed:    c.failed,
		}
		if c.succeeded > 0 {
			avg := c.processingTime / time.Duration(c.succeeded)
			stats.AvgProcessingTime = float64(avg.Microseconds()) / 1000
		}
		snapshot[name] = stats
	}
	return snapshot
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *logrus.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer in subscription order.
// A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event GatewayEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, obs := range observers {
		p.notify(ctx, obs, event)
	}
}

func (p *EventPublisher) notify(ctx context.Context, obs Observer, event GatewayEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
