package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsInterceptor counts unary calls by method and status code and observes their
// latency. It registers its collectors on reg, so build at most one per registry.
func MetricsInterceptor(reg prometheus.Registerer) grpc.UnaryServerInterceptor {
	factory := promauto.With(reg)
	handled := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_server_handled_total",
		Help: "Unary RPCs completed on the server, by method and status code.",
	}, []string{"method", "code"})
	latency := factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grpc_server_handling_seconds",
		Help:    "Unary RPC handling latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		latency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		handled.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
