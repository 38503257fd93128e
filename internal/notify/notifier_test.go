package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:     42,
		Status: domain.OrderPending,
		Total:  decimal.RequireFromString("1234.5"),
		Items: []domain.OrderItem{{
			ProductName: "Espresso Machine",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("1234.5"),
			LineTotal:   decimal.RequireFromString("1234.5"),
		}},
	}
}

func TestBusEventsBecomeEmails(t *testing.T) {
	mailer := &fakeMailer{}
	n, err := NewNotifier(mailer, 2, "https://shop.test/")
	require.NoError(t, err)
	defer n.Close()

	bus := EventBus.New()
	require.NoError(t, n.Subscribe(bus))

	customer := domain.Account{Name: "Asha", Email: "asha@shop.test"}
	bus.Publish(domain.TopicOrderPlaced, domain.OrderEvent{Order: sampleOrder(), Customer: customer})

	shipped := sampleOrder()
	shipped.Status = domain.OrderCompleted
	bus.Publish(domain.TopicOrderStatus, domain.OrderEvent{Order: shipped, Customer: customer, Previous: domain.OrderPending})

	bus.Publish(domain.TopicPasswordReset, domain.PasswordResetEvent{
		Account:   customer,
		Token:     "abc123",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	n.Wait()

	require.Len(t, mailer.sent, 3)
	bySubject := map[string]Message{}
	for _, m := range mailer.sent {
		assert.Equal(t, "asha@shop.test", m.To)
		bySubject[m.Subject] = m
	}
	placed, ok := bySubject["Order #42 confirmed"]
	require.True(t, ok)
	assert.Contains(t, placed.Body, "1,234.50")
	assert.Contains(t, placed.Body, "Espresso Machine")

	status, ok := bySubject["Order #42 is completed"]
	require.True(t, ok)
	assert.Contains(t, status.Body, "(was pending)")

	reset := bySubject["Password reset"]
	assert.Contains(t, reset.Body, "https://shop.test/reset-password?token=abc123")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	n, err := NewNotifier(mailer, 1, "")
	require.NoError(t, err)

	n.OrderPlaced(domain.OrderEvent{Order: sampleOrder(), Customer: domain.Account{Email: "x@shop.test"}})
	n.OrderPlaced(domain.OrderEvent{Order: sampleOrder()})
	n.Close()
	assert.Empty(t, mailer.sent)
}

func TestCloseStopsDispatch(t *testing.T) {
	mailer := &fakeMailer{}
	n, err := NewNotifier(mailer, 2, "")
	require.NoError(t, err)
	ev := domain.OrderEvent{Order: sampleOrder(), Customer: domain.Account{Name: "Asha", Email: "asha@shop.test"}}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.OrderPlaced(ev)
		}()
	}
	n.Close()
	wg.Wait()

	mailer.mu.Lock()
	delivered := len(mailer.sent)
	mailer.mu.Unlock()
	n.OrderPlaced(ev)
	n.Close()

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Len(t, mailer.sent, delivered)
	assert.LessOrEqual(t, delivered, 20)
}
