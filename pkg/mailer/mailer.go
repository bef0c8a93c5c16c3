// Package mailer sends admin notification emails for new paid orders.
package mailer

import (
	"fmt"
	"strings"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	config *config.SMTPConfig
	admins []string
	logger *zap.Logger
}

func New(cfg *config.SMTPConfig, adminEmails []string, logger *zap.Logger) *Mailer {
	return &Mailer{
		config: cfg,
		admins: adminEmails,
		logger: logger,
	}
}

// NotifyNewOrder emails the configured admins about a freshly materialized
// order. Best effort: a mail failure never fails the order flow.
func (m *Mailer) NotifyNewOrder(order *models.Order) {
	if !m.config.Enabled() || len(m.admins) == 0 {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", m.admins...)
	msg.SetHeader("Subject", fmt.Sprintf("New order received (#%s)", order.ID.Hex()))
	msg.SetBody("text/plain", formatOrder(order))

	dialer := gomail.NewDialer(m.config.Host, m.config.Port, m.config.Username, m.config.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("Failed to send order notification email",
			zap.String("order_id", order.ID.Hex()),
			zap.Error(err))
	}
}

func formatOrder(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order ID: %s\n", order.ID.Hex())
	fmt.Fprintf(&b, "Customer: %s (%s)\n", order.UserName, orEmpty(order.Email, "n/a"))
	fmt.Fprintf(&b, "Total: $%.2f %s\n", order.Total, strings.ToUpper(order.Currency))
	fmt.Fprintf(&b, "Status: %s\n\n", order.Status)

	for _, it := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ $%.2f = $%.2f\n",
			it.Name, it.Quantity, it.Price, it.Price*float64(it.Quantity))
	}
	return b.String()
}

func orEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
