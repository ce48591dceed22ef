package worker

import (
	"context"
	"fmt"

	"pinledger/internal/amqp"
	"pinledger/internal/core"
	"pinledger/internal/log"
)

// LocationSink accepts device positions, normally a location.Feed.
type LocationSink interface {
	Publish(sample core.LocationSample) int
}

// LocationWorker forwards positions received over AMQP to the proximity monitor.
type LocationWorker struct {
	sink   LocationSink
	logger *log.Logger
}

func NewLocationWorker(sink LocationSink, logger *log.Logger) *LocationWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &LocationWorker{sink: sink, logger: logger}
}

// HandleLocation is an amqp.Handler.
func (w *LocationWorker) HandleLocation(ctx context.Context, body []byte) error {
	msg, err := amqp.LocationMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformed, err)
	}

	sample := core.LocationSample{
		Coordinates: core.Coordinates{Latitude: msg.Latitude, Longitude: msg.Longitude},
		Accuracy:    msg.Accuracy,
		Timestamp:   msg.Timestamp,
	}
	delivered := w.sink.Publish(sample)
	w.logger.DebugContext(ctx, "Location forwarded",
		append(log.NewFields().WithPosition(msg.Latitude, msg.Longitude).ToSlice(), "subscribers", delivered)...)
	return nil
}
