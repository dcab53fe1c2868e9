// Package health reports readiness of the API's backing services over HTTP
// (GET /health) and the standard gRPC health protocol.
package health

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name of the API.
const ServiceName = "construmarket.v1.MarketplaceAPI"

type Probe func(ctx context.Context) error

type Checker struct {
	mu      sync.RWMutex
	names   []string
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	return &Checker{probes: map[string]Probe{}, timeout: timeout}
}

// Add registers a named dependency probe. Probes run in registration order.
func (c *Checker) Add(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.probes[name]; !ok {
		c.names = append(c.names, name)
	}
	c.probes[name] = p
}

// Check runs every probe and returns "ok" or the error text per name.
func (c *Checker) Check(ctx context.Context) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.names))
	healthy := true
	for _, name := range c.names {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.probes[name](pctx)
		cancel()
		if err != nil {
			out[name] = err.Error()
			healthy = false
			continue
		}
		out[name] = "ok"
	}
	return out, healthy
}

func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks, ok := c.Check(ctx.Request.Context())
		status, code := "OK", http.StatusOK
		if !ok {
			status, code = "DEGRADED", http.StatusServiceUnavailable
		}
		ctx.JSON(code, gin.H{
			"success":   ok,
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	}
}

// GRPCServer serves grpc.health.v1.Health and keeps its status in step with
// the checker.
type GRPCServer struct {
	srv      *grpc.Server
	hs       *health.Server
	checker  *Checker
	interval time.Duration
}

func NewGRPCServer(c *Checker, interval time.Duration, opts ...grpc.ServerOption) *GRPCServer {
	g := &GRPCServer{
		srv:      grpc.NewServer(opts...),
		hs:       health.NewServer(),
		checker:  c,
		interval: interval,
	}
	healthpb.RegisterHealthServer(g.srv, g.hs)
	g.hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return g
}

// Refresh runs the checker once and publishes the result.
func (g *GRPCServer) Refresh(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if _, ok := g.checker.Check(ctx); !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.hs.SetServingStatus("", st)
	g.hs.SetServingStatus(ServiceName, st)
}

// Watch refreshes the status every interval until ctx is done.
func (g *GRPCServer) Watch(ctx context.Context) {
	g.Refresh(ctx)
	t := time.NewTicker(g.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			g.Refresh(ctx)
		}
	}
}

func (g *GRPCServer) Serve(lis net.Listener) error { return g.srv.Serve(lis) }

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (g *GRPCServer) Stop() {
	g.hs.Shutdown()
	g.srv.GracefulStop()
}
