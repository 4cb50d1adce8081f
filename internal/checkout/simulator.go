// Package checkout implements the simulated checkout flow: an
// Idle → Processing → Complete state machine with order summary math and
// no failure transition. No payment or order API is ever called.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minicart/storefront/internal/cart"
)

// Status is the checkout state machine position.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Pricing constants from the storefront: free shipping above 50, a flat fee
// below, 8% tax on the subtotal.
var (
	freeShippingThreshold = decimal.NewFromInt(50)
	shippingFee           = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// ErrEmptyCart rejects checkout of an empty cart.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// MissingFieldError reports an absent payment form field. Presence is the
// only validation the simulator performs.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Form carries the payment form. All fields are required, none are
// validated beyond presence.
type Form struct {
	Email      string
	FirstName  string
	LastName   string
	Address    string
	City       string
	State      string
	ZipCode    string
	CardNumber string
	ExpiryDate string
	CVV        string
	NameOnCard string
}

func (f Form) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"email", f.Email},
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"zipCode", f.ZipCode},
		{"cardNumber", f.CardNumber},
		{"expiryDate", f.ExpiryDate},
		{"cvv", f.CVV},
		{"nameOnCard", f.NameOnCard},
	}
	for _, fd := range fields {
		if fd.value == "" {
			return &MissingFieldError{Field: fd.name}
		}
	}
	return nil
}

// Summary is the displayed order total breakdown. Values are unrounded;
// the wire layer rounds for presentation.
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Summarize computes shipping, tax, and total for a subtotal.
func Summarize(subtotal decimal.Decimal) Summary {
	shipping := shippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Result is a completed checkout.
type Result struct {
	OrderID       string
	Summary       Summary
	PlacedAt      time.Time
	RedirectAfter time.Duration
}

// Simulator runs the artificial checkout flow over the injected cart store.
type Simulator struct {
	cart            *cart.Store
	processingDelay time.Duration
	redirectAfter   time.Duration
	now             func() time.Time
	lg              *zap.Logger

	mu     sync.Mutex
	status Status
}

// NewSimulator creates a Simulator. Delays default to the storefront's 3s
// when non-positive; tests inject shorter ones.
func NewSimulator(c *cart.Store, processingDelay, redirectAfter time.Duration, lg *zap.Logger) *Simulator {
	if processingDelay <= 0 {
		processingDelay = 3 * time.Second
	}
	if redirectAfter <= 0 {
		redirectAfter = 3 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Simulator{
		cart:            c,
		processingDelay: processingDelay,
		redirectAfter:   redirectAfter,
		now:             time.Now,
		lg:              lg,
	}
}

// Status reports the state machine position. Idle means a checkout may
// begin (the HTTP layer additionally requires a non-empty cart to enter).
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Summarize computes the summary for the cart's current snapshot.
func (s *Simulator) Summarize() Summary {
	return Summarize(s.cart.Snapshot().Total)
}

// Submit runs one checkout: validate presence, hold in Processing for the
// artificial delay, then unconditionally complete, clearing the cart.
// The only failure paths are pre-flight (empty cart, missing field) and
// context cancellation during the delay; a started checkout cannot fail.
func (s *Simulator) Submit(ctx context.Context, form Form) (*Result, error) {
	snapshot := s.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := form.validate(); err != nil {
		return nil, err
	}

	s.setStatus(StatusProcessing)
	if err := s.wait(ctx); err != nil {
		s.setStatus(StatusIdle)
		return nil, err
	}

	summary := Summarize(snapshot.Total)
	s.cart.Clear()
	s.setStatus(StatusComplete)

	result := &Result{
		OrderID:       uuid.New().String(),
		Summary:       summary,
		PlacedAt:      s.now(),
		RedirectAfter: s.redirectAfter,
	}
	s.lg.Info("Order placed",
		zap.String("order_id", result.OrderID),
		zap.String("total", summary.Total.Round(2).String()),
		zap.Int("items", snapshot.ItemCount),
	)
	return result, nil
}

func (s *Simulator) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Simulator) wait(ctx context.Context) error {
	timer := time.NewTimer(s.processingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
