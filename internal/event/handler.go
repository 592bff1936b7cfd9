package event

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/rpccodec"
)

const EventServiceName = "taskboard.v1.EventService"

const EventServiceSubscribeEventsProcedure = "/taskboard.v1.EventService/SubscribeEvents"

type EventServiceHandler interface {
	SubscribeEvents(context.Context, *connect.Request[SubscribeEventsRequest], *connect.ServerStream[eventbus.Event]) error
}

func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpccodec.WithJSON()}, opts...)
	subscribeHandler := connect.NewServerStreamHandler(EventServiceSubscribeEventsProcedure, svc.SubscribeEvents, opts...)
	return "/" + EventServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EventServiceSubscribeEventsProcedure:
			subscribeHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type EventServiceClient interface {
	SubscribeEvents(context.Context, *connect.Request[SubscribeEventsRequest]) (*connect.ServerStreamForClient[eventbus.Event], error)
}

type eventServiceClient struct {
	subscribeEvents *connect.Client[SubscribeEventsRequest, eventbus.Event]
}

func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EventServiceClient {
	opts = append([]connect.ClientOption{rpccodec.WithJSON()}, opts...)
	return &eventServiceClient{
		subscribeEvents: connect.NewClient[SubscribeEventsRequest, eventbus.Event](httpClient, baseURL+EventServiceSubscribeEventsProcedure, opts...),
	}
}

func (c *eventServiceClient) SubscribeEvents(ctx context.Context, req *connect.Request[SubscribeEventsRequest]) (*connect.ServerStreamForClient[eventbus.Event], error) {
	return c.subscribeEvents.CallServerStream(ctx, req)
}
