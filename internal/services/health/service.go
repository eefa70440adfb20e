package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports process liveness and the state of the database.
type Service struct {
	DB Pinger
}

// NewService constructs a health service. db may be nil when the process
// runs on in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status is the /api/health payload. Status stays "ok" while the process
// serves requests; the database state is informational.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Service) Status(ctx context.Context) Status {
	out := Status{Status: "ok", Database: "memory"}
	if s == nil || s.DB == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out.Database = "unavailable"
		return out
	}
	out.Database = "ok"
	return out
}
