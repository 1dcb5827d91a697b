package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airticket/internal/kafka"
	"github.com/Domenick1991/airticket/internal/log"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender renders ticket events into e-mails. Delivery is logged; wiring an
// SMTP relay only needs a different Deliver func.
type Sender struct {
	Deliver func(ctx context.Context, msg Message) error
}

func NewSender() *Sender {
	return &Sender{Deliver: logDelivery}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	msg, ok := Render(event)
	if !ok {
		log.FromContext(ctx).WithField("type", event.Type).Warn("no e-mail template for event")
		return nil
	}
	return s.Deliver(ctx, msg)
}

func Render(event kafka.TicketEvent) (Message, bool) {
	switch event.Type {
	case kafka.EventTicketBooked, "":
		return Message{
			To:      event.Email,
			Subject: "Ticket Booking Confirmation",
			Body:    fmt.Sprintf("Your ticket is booked.\nPNR: %s\nFlight: %d\nSeats: %d", event.PNR, event.FlightID, event.SeatCount),
		}, true
	case kafka.EventTicketCancelled:
		return Message{
			To:      event.Email,
			Subject: "Ticket Cancellation",
			Body:    fmt.Sprintf("Your ticket has been cancelled.\nPNR: %s\nFlight: %d", event.PNR, event.FlightID),
		}, true
	default:
		return Message{}, false
	}
}

func logDelivery(ctx context.Context, msg Message) error {
	log.FromContext(ctx).WithField("to", msg.To).WithField("subject", msg.Subject).Info("send email")
	return nil
}
