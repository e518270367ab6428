package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  []Service `json:"services"`
}

type Service struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker pings the backing stores. A nil Redis is skipped.
type Checker struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func (h *Checker) Check(ctx context.Context) Status {
	var services []Service
	overall := StatusHealthy

	if h.DB != nil {
		service := Service{Name: "PostgreSQL", Status: "up"}
		if err := h.pingDB(ctx); err != nil {
			service.Status = "down"
			service.Message = err.Error()
			overall = StatusDegraded
		}
		services = append(services, service)
	}

	if h.Redis != nil {
		service := Service{Name: "Redis", Status: "up"}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := h.Redis.Ping(pingCtx).Err(); err != nil {
			service.Status = "down"
			service.Message = err.Error()
			overall = StatusDegraded
		}
		cancel()
		services = append(services, service)
	}

	return Status{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Services:  services,
	}
}

func (h *Checker) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
