package notify

import (
	"fmt"
	"strings"

	"github.com/gregdel/pushover"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/booking"
)

const (
	PriorityNormal = 0
	PriorityHigh   = 1
)

type messageSender interface {
	SendMessage(message *pushover.Message, recipient *pushover.Recipient) (*pushover.Response, error)
}

// Notifier pushes booked tickets to a Pushover user.
type Notifier struct {
	app       messageSender
	recipient *pushover.Recipient
	logger    *logrus.Logger
}

func NewNotifier(token, userKey string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
		logger:    logger,
	}
}

func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	msg := pushover.NewMessageWithTitle(message, title)
	msg.Priority = priority

	resp, err := n.app.SendMessage(msg, n.recipient)
	if err != nil {
		return fmt.Errorf("sending pushover notification: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"title":      title,
		"status":     resp.Status,
		"request_id": resp.ID,
	}).Debug("notification sent")

	return nil
}

// SendTicket sends the ticket text. Tickets carrying transfer warnings go
// out at high priority.
func (n *Notifier) SendTicket(ticket booking.Ticket) error {
	title := fmt.Sprintf("Metro Ticket %s to %s", ticket.Summary.From, ticket.Summary.To)
	priority := PriorityNormal
	if len(ticket.Warnings) > 0 {
		priority = PriorityHigh
	}
	return n.SendWithPriority(title, TicketBody(ticket), priority)
}

// TicketBody formats a ticket as plain text.
func TicketBody(ticket booking.Ticket) string {
	var b strings.Builder
	s := ticket.Summary

	for i, leg := range s.Legs {
		if i > 0 {
			tr := s.Transfers[i-1]
			fmt.Fprintf(&b, "Transfer at %s: %d min\n", tr.AtStation, tr.WaitMin)
		}
		fmt.Fprintf(&b, "Train %d: %s to %s, %s - %s (%d min)\n",
			i+1, leg.From, leg.To, leg.Depart, leg.Arrive, leg.DurationMin)
	}
	fmt.Fprintf(&b, "Total journey time: %d minutes\n", s.TotalMinutes)

	passengers := 0
	for _, line := range ticket.Fare.Lines {
		passengers += line.Count
	}
	fare := fmt.Sprintf("Fare: %.2f for %d passenger(s)", ticket.Fare.Total, passengers)
	if ticket.Fare.RoundTrip {
		fare += ", round trip"
	}
	if ticket.Fare.Peak {
		fare += ", peak"
	}
	b.WriteString(fare)

	for _, w := range ticket.Warnings {
		fmt.Fprintf(&b, "\nWarning: %s", w)
	}

	return b.String()
}
