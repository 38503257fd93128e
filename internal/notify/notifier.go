package notify

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

const sendTimeout = 30 * time.Second

// Notifier turns domain events into customer emails. Delivery runs on a
// worker pool and failures are only logged.
type Notifier struct {
	mailer    Mailer
	pool      *ants.Pool
	printer   *message.Printer
	publicURL string

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotifier(mailer Mailer, workers int, publicURL string) (*Notifier, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		zap.S().Errorf("notify worker panic: %v", v)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create notify pool")
	}
	return &Notifier{
		mailer:    mailer,
		pool:      pool,
		printer:   message.NewPrinter(language.English),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Subscribe attaches the notifier to the bus topics it handles.
func (n *Notifier) Subscribe(bus EventBus.Bus) error {
	subs := map[string]interface{}{
		domain.TopicOrderPlaced:   n.OrderPlaced,
		domain.TopicOrderStatus:   n.OrderStatusChanged,
		domain.TopicPasswordReset: n.PasswordReset,
	}
	for topic, fn := range subs {
		if err := bus.Subscribe(topic, fn); err != nil {
			return errors.Wrapf(err, "subscribe %s", topic)
		}
	}
	return nil
}

func (n *Notifier) dispatch(msg Message) {
	if msg.To == "" {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		zap.L().Warn("mail dropped after close", zap.String("namespace", "notify"), zap.String("to", msg.To))
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()
	err := n.pool.Submit(func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.mailer.Send(ctx, msg); err != nil {
			zap.L().Warn("mail delivery failed",
				zap.String("namespace", "notify"),
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	})
	if err != nil {
		n.wg.Done()
		zap.L().Warn("mail dropped", zap.String("namespace", "notify"), zap.Error(err))
	}
}

// order numbers are printed raw, the printer would group their digits
func orderNo(o *domain.Order) string {
	return strconv.FormatInt(o.ID, 10)
}

func (n *Notifier) amount(o *domain.Order) string {
	return n.printer.Sprintf("%.2f", o.Total.InexactFloat64())
}

func (n *Notifier) orderLines(b *strings.Builder, o *domain.Order) {
	for _, it := range o.Items {
		b.WriteString(n.printer.Sprintf("  %d x %s @ %.2f = %.2f\n",
			it.Quantity, it.ProductName, it.UnitPrice.InexactFloat64(), it.LineTotal.InexactFloat64()))
	}
}

// OrderPlaced sends the order confirmation.
func (n *Notifier) OrderPlaced(ev domain.OrderEvent) {
	o := &ev.Order
	var b strings.Builder
	b.WriteString(n.printer.Sprintf("Hello %s,\n\nThank you for your order #%s.\n\n", ev.Customer.Name, orderNo(o)))
	n.orderLines(&b, o)
	b.WriteString(n.printer.Sprintf("\nTotal: %s\nStatus: %s\n", n.amount(o), o.Status))
	n.dispatch(Message{
		To:      ev.Customer.Email,
		Subject: "Order #" + orderNo(o) + " confirmed",
		Body:    b.String(),
	})
}

// OrderStatusChanged tells the customer about a status change.
func (n *Notifier) OrderStatusChanged(ev domain.OrderEvent) {
	o := &ev.Order
	var b strings.Builder
	b.WriteString(n.printer.Sprintf("Hello %s,\n\nYour order #%s is now %s (was %s).\n\n",
		ev.Customer.Name, orderNo(o), o.Status, ev.Previous))
	n.orderLines(&b, o)
	b.WriteString(n.printer.Sprintf("\nTotal: %s\n", n.amount(o)))
	n.dispatch(Message{
		To:      ev.Customer.Email,
		Subject: "Order #" + orderNo(o) + " is " + string(o.Status),
		Body:    b.String(),
	})
}

// PasswordReset mails the reset link.
func (n *Notifier) PasswordReset(ev domain.PasswordResetEvent) {
	link := n.publicURL + "/reset-password?token=" + ev.Token
	body := n.printer.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It expires at %s.\n\n%s\n\nIf you did not ask for this, ignore this email.\n",
		ev.Account.Name, ev.ExpiresAt.Format(time.RFC1123), link)
	n.dispatch(Message{To: ev.Account.Email, Subject: "Password reset", Body: body})
}

// Wait blocks until queued messages are delivered.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Close refuses new messages, drains the queue and stops the pool.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()
	n.wg.Wait()
	n.pool.Release()
}
