package events

import (
	"log/slog"
	"time"
)

func NewKafkaPublisherWithWriter(writer messageWriter, logger *slog.Logger) *KafkaPublisher {
	return newKafkaPublisher(writer, logger)
}

func (p *KafkaPublisher) SetClock(now func() time.Time) {
	p.now = now
}
