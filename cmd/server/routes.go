package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tekiplanet/safejet-processing-deposit/internal/coordinator"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/blockchain"
)

const testConnectionTimeout = 10 * time.Second

// registerRoutes wires the operational HTTP surface: liveness, on-demand
// adapter connectivity checks, and Prometheus scraping. There is no
// payment, merchant, or auth surface here — this process only tracks
// deposits.
func registerRoutes(r *gin.Engine, coord *coordinator.Coordinator, adapters map[entities.Target]blockchain.ChainAdapter, registry *prometheus.Registry) {
	r.GET("/health", healthHandler(coord))
	r.GET("/testConnection/:chain/:network", testConnectionHandler(adapters))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

func healthHandler(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"targets": coord.RunningTargets(),
		})
	}
}

func testConnectionHandler(adapters map[entities.Target]blockchain.ChainAdapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := entities.Target{
			Chain:   entities.NormalizeChainKey(c.Param("chain")),
			Network: entities.Network(strings.ToLower(c.Param("network"))),
		}

		adapter, ok := adapters[target]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no running monitor for " + target.String()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), testConnectionTimeout)
		defer cancel()

		height, err := adapter.TipHeight(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"chain":   target.Chain,
			"network": target.Network,
			"height":  height,
		})
	}
}
