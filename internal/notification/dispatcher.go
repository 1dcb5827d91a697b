package notification

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/gateway"
	"github.com/Domenick1991/airticket/internal/kafka"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/Domenick1991/airticket/internal/metrics"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const defaultTimeout = 10 * time.Second

// Dispatcher publishes one event per passenger of a ticket. It runs in the
// background and never reports failures to the caller.
type Dispatcher struct {
	directory gateway.Directory
	producer  Producer
	topic     string
	timeout   time.Duration
	wg        sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func NewDispatcher(directory gateway.Directory, producer Producer, topic string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		directory: directory,
		producer:  producer,
		topic:     topic,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) TicketBooked(ctx context.Context, ticket domain.Ticket) {
	d.dispatchAsync(ctx, kafka.EventTicketBooked, ticket)
}

func (d *Dispatcher) TicketCancelled(ctx context.Context, ticket domain.Ticket) {
	d.dispatchAsync(ctx, kafka.EventTicketCancelled, ticket)
}

// Wait blocks until every dispatch started so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatchAsync(ctx context.Context, eventType string, ticket domain.Ticket) {
	// detached from the request so a finished HTTP call does not cancel delivery
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.FromContext(ctx).WithField("pnr", ticket.PNR).Errorf("notification dispatch panicked: %v", r)
			}
		}()
		d.Dispatch(ctx, eventType, ticket)
	}()
}

// Dispatch delivers the event to every passenger synchronously. A failure
// for one passenger is logged and the loop moves on.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, ticket domain.Ticket) {
	if d.producer == nil || d.topic == "" {
		return
	}
	for _, pid := range ticket.PassengerIDs {
		logger := log.FromContext(ctx).WithFields(logrus.Fields{
			"pnr":          ticket.PNR,
			"passenger_id": pid,
			"event":        eventType,
		})

		details, err := d.directory.GetPassengerDetails(ctx, pid).Unwrap()
		if err != nil {
			logger.WithError(err).Warn("notification skipped: passenger lookup failed")
			metrics.NotificationsTotal.WithLabelValues(eventType, "lookup_failed").Inc()
			continue
		}

		event := kafka.TicketEvent{
			Type:      eventType,
			Email:     details.Email,
			PNR:       ticket.PNR,
			FlightID:  ticket.FlightID,
			SeatCount: ticket.NumberOfSeats,
		}
		if err := d.producer.Publish(ctx, d.topic, ticket.PNR, event); err != nil {
			logger.WithError(err).Error("notification skipped: publish failed")
			metrics.NotificationsTotal.WithLabelValues(eventType, "publish_failed").Inc()
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(eventType, "sent").Inc()
	}
}
