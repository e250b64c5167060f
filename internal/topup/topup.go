// Package topup holds the process-wide "funding dialog open" flag and the
// validation rules of a funding request.
package topup

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/notify"
)

// MinimumAmount is the smallest accepted funding amount in NGN.
const MinimumAmount = 1000

// Coordinator is a Closed/Open switch shared by every view that can start a
// top-up. It carries no payload.
type Coordinator struct {
	mu     sync.Mutex
	open   bool
	broker *notify.Broker
}

// New returns a closed coordinator.
func New() *Coordinator {
	return &Coordinator{broker: notify.NewBroker()}
}

// Open opens the funding dialog.
func (c *Coordinator) Open() {
	c.set(true)
}

// Close closes the funding dialog.
func (c *Coordinator) Close() {
	c.set(false)
}

// IsOpen reports whether the funding dialog is open.
func (c *Coordinator) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Subscribe returns a channel signalled when the dialog opens or closes.
func (c *Coordinator) Subscribe() (<-chan struct{}, func()) {
	return c.broker.Subscribe()
}

func (c *Coordinator) set(open bool) {
	c.mu.Lock()
	changed := c.open != open
	c.open = open
	c.mu.Unlock()

	if changed {
		c.broker.Publish()
	}
}

// Request is what the funding dialog collects before asking for payment
// options.
type Request struct {
	Amount float64
	Method string
}

// ParseAmount parses user input such as "5000" or "5,000.50".
func ParseAmount(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, errors.NewValidationError("amount", "please enter an amount")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || !isFinite(v) {
		return 0, errors.NewValidationError("amount", "amount must be a number")
	}
	return v, nil
}

// Validate enforces the minimum amount and a known payment method.
func (r Request) Validate() error {
	if !isFinite(r.Amount) {
		return errors.NewValidationError("amount", "amount must be a number")
	}
	if r.Amount < MinimumAmount {
		return errors.NewTopUpAmountError(r.Amount, MinimumAmount)
	}
	switch r.Method {
	case api.PaymentBankTransfer, api.PaymentOnlineCheckout:
		return nil
	}
	return errors.NewTopUpMethodError(r.Method)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
