package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health returns a JSON health check response.
// Checks each dependency; never exposes credentials or internals.
func Health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{}
		for name, dep := range deps {
			state := "connected"
			if err := dep.Ping(ctx); err != nil {
				state = "error"
				status = http.StatusServiceUnavailable
			}
			body[name] = state
		}
		body["ok"] = status == http.StatusOK

		c.JSON(status, body)
	}
}
