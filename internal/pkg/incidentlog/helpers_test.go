package incidentlog

import (
	"context"
	"sync"

	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
)

// fakeCreator запоминает запросы и возвращает заданную ошибку.
type fakeCreator struct {
	mu       sync.Mutex
	requests []pagerduty.TriggerRequest
	err      error
}

func (f *fakeCreator) CreateTrigger(_ context.Context, req pagerduty.TriggerRequest) (pagerduty.EventResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return pagerduty.EventResponse{"status": "success", "incident_key": derefOr(req.IncidentKey, "")}, nil
}

func (f *fakeCreator) last() pagerduty.TriggerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func derefOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
