package observer

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsObserver_Counters(t *testing.T) {
	o := NewMetricsObserver()
	ctx := context.Background()

	o.OnEvent(ctx, InspectionEvent{EventType: InspectionStarted})
	o.OnEvent(ctx, InspectionEvent{EventType: InspectionStarted})
	o.OnEvent(ctx, InspectionEvent{
		EventType:      InspectionCompleted,
		Stage:          "installation",
		ProcessingTime: 100 * time.Millisecond,
	})
	o.OnEvent(ctx, InspectionEvent{EventType: InspectionFailed})
	o.OnEvent(ctx, InspectionEvent{EventType: EnrichmentFailed})
	o.OnEvent(ctx, InspectionEvent{EventType: ReportRendered})

	metrics := o.GetMetrics()

	if metrics["total_inspections"].(int64) != 2 {
		t.Errorf("Expected 2 total inspections, got %v", metrics["total_inspections"])
	}
	if metrics["successful_inspections"].(int64) != 1 {
		t.Errorf("Expected 1 successful inspection, got %v", metrics["successful_inspections"])
	}
	if metrics["failed_inspections"].(int64) != 1 {
		t.Errorf("Expected 1 failed inspection, got %v", metrics["failed_inspections"])
	}
	if metrics["enrichment_failures"].(int64) != 1 {
		t.Errorf("Expected 1 enrichment failure, got %v", metrics["enrichment_failures"])
	}
	if metrics["reports_rendered"].(int64) != 1 {
		t.Errorf("Expected 1 rendered report, got %v", metrics["reports_rendered"])
	}

	byStage := metrics["inspections_by_stage"].(map[string]int64)
	if byStage["installation"] != 1 {
		t.Errorf("Expected 1 installation inspection, got %v", byStage)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []InspectionEvent
	done   chan struct{}
}

func (r *recordingObserver) OnEvent(ctx context.Context, event InspectionEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recordingObserver) GetObserverName() string { return "recording_observer" }

func TestEventPublisher_NotifiesSubscribers(t *testing.T) {
	publisher := NewEventPublisher()
	rec := &recordingObserver{done: make(chan struct{}, 1)}
	publisher.Subscribe(rec)

	publisher.NotifyObservers(context.Background(), InspectionEvent{
		EventType: InspectionStarted,
		ImageRef:  "site.jpg",
	})

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("Observer was not notified")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || rec.events[0].ImageRef != "site.jpg" {
		t.Errorf("Unexpected events: %+v", rec.events)
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	rec := &recordingObserver{done: make(chan struct{}, 1)}
	publisher.Subscribe(rec)
	publisher.Unsubscribe(rec)

	publisher.NotifyObservers(context.Background(), InspectionEvent{EventType: InspectionStarted})

	select {
	case <-rec.done:
		t.Fatal("Unsubscribed observer was notified")
	case <-time.After(100 * time.Millisecond):
	}
}
