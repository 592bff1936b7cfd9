// Package event streams task and assignment changes to subscribers.
package event

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/validation"
)

var _ EventServiceHandler = (*Server)(nil)

const subscriberBuffer = 64

type SubscribeEventsRequest struct {
	// Types limits the stream to these event types. Empty means all.
	Types []eventbus.Type `json:"types,omitempty" validate:"dive,oneof=task.created task.updated task.deleted task.status_changed assignment.requested assignment.responded"`
	// ResourceID limits the stream to events about one task or request, or
	// request events about one task.
	ResourceID string `json:"resource_id,omitempty"`
}

type Server struct {
	eventBus *eventbus.Bus
}

func NewServer(eventBus *eventbus.Bus) *Server {
	return &Server{eventBus: eventBus}
}

func (s *Server) SubscribeEvents(ctx context.Context, req *connect.Request[SubscribeEventsRequest], stream *connect.ServerStream[eventbus.Event]) error {
	if _, err := auth.RequireActor(ctx); err != nil {
		return err
	}
	if err := validation.Struct(req.Msg); err != nil {
		return err
	}
	subID, ch := s.eventBus.Subscribe(subscriberBuffer)
	defer s.eventBus.Unsubscribe(subID)

	typeFilter := make(map[eventbus.Type]struct{}, len(req.Msg.Types))
	for _, t := range req.Msg.Types {
		typeFilter[t] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if !matches(ev, typeFilter, req.Msg.ResourceID) {
				continue
			}
			if err := stream.Send(ev); err != nil {
				return err
			}
		}
	}
}

func matches(ev *eventbus.Event, types map[eventbus.Type]struct{}, resourceID string) bool {
	if len(types) > 0 {
		if _, ok := types[ev.Type]; !ok {
			return false
		}
	}
	if resourceID != "" && ev.ResourceID != resourceID && ev.Metadata["task_id"] != resourceID {
		return false
	}
	return true
}
