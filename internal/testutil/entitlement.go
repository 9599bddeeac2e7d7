package testutil

import (
	"context"
	"sync"

	"tracker-go/internal/tracker"
)

// FakeGateway is a scripted tracker.EntitlementGateway. Each method returns the
// matching response field, or the matching error field when it is set.
type FakeGateway struct {
	mu sync.Mutex

	ActivateResp   *tracker.ActivateResponse
	ActivateErr    error
	ValidateResp   *tracker.ValidateResponse
	ValidateErr    error
	DeactivateResp *tracker.DeactivateResponse
	DeactivateErr  error
	Checkout       *tracker.CheckoutSession
	CheckoutErr    error

	Activations   []tracker.ActivateRequest
	Validations   []tracker.ValidateRequest
	Deactivations []tracker.DeactivateRequest
}

func (g *FakeGateway) Activate(_ context.Context, req tracker.ActivateRequest) (*tracker.ActivateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Activations = append(g.Activations, req)
	if g.ActivateErr != nil {
		return nil, g.ActivateErr
	}
	return g.ActivateResp, nil
}

func (g *FakeGateway) Validate(_ context.Context, req tracker.ValidateRequest) (*tracker.ValidateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Validations = append(g.Validations, req)
	if g.ValidateErr != nil {
		return nil, g.ValidateErr
	}
	return g.ValidateResp, nil
}

func (g *FakeGateway) Deactivate(_ context.Context, req tracker.DeactivateRequest) (*tracker.DeactivateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Deactivations = append(g.Deactivations, req)
	if g.DeactivateErr != nil {
		return nil, g.DeactivateErr
	}
	return g.DeactivateResp, nil
}

func (g *FakeGateway) GenerateCheckoutSession(context.Context) (*tracker.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CheckoutErr != nil {
		return nil, g.CheckoutErr
	}
	return g.Checkout, nil
}

var _ tracker.EntitlementGateway = (*FakeGateway)(nil)
