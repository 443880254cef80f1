// Package notify publishes library change events to the broker, one event
// per affected entity.
package notify

import (
	"context"

	"go-micro.dev/v4"
	"go-micro.dev/v4/logger"
)

// Topic is where library change events are published
const Topic = "course-library.events"

type Kind string

const (
	KindCourseAdded     Kind = "course-added"
	KindCourseUpdated   Kind = "course-updated"
	KindCourseRemoved   Kind = "course-removed"
	KindVideoCompletion Kind = "video-completion"
	KindRootChanged     Kind = "root-changed"
)

type Event struct {
	Kind     Kind
	CourseID string
	VideoID  string
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type publisher struct {
	ev micro.Event
}

// NewPublisher creates a Publisher on top of the service broker.
func NewPublisher(service micro.Service) Publisher {
	return &publisher{ev: micro.NewEvent(Topic, service.Client())}
}

func (p *publisher) Publish(ctx context.Context, event Event) {
	// losing a notification is tolerable, consumers re-query the library
	if err := p.ev.Publish(ctx, &event); err != nil {
		logger.Warnf("Publish %s event failed: %s", event.Kind, err)
	}
}
