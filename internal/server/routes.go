package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srcops/notifyd/internal/webhook"
)

const (
	eventHeader    = "X-GitHub-Event"
	deliveryHeader = "X-GitHub-Delivery"
)

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.startedAt).String(),
			"service": "notifyd",
		})
	})

	s.engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"uptime": time.Since(s.startedAt).String(),
		})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/webhook/github", s.handleWebhook)
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := webhook.VerifySignature(s.secret, body, c.GetHeader(webhook.SignatureHeader)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("client_ip", c.ClientIP()).
			Msg("webhook_signature_rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
		return
	}

	event := c.GetHeader(eventHeader)
	if event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + eventHeader + " header"})
		return
	}
	deliveryID := c.GetHeader(deliveryHeader)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	err = s.dispatcher.Dispatch(c.Request.Context(), webhook.Delivery{
		ID:    deliveryID,
		Event: event,
		Body:  body,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "undecodable payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted", "delivery": deliveryID})
}
