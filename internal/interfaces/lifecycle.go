package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenPanelCore/internal/config"
	"github.com/KevinKickass/OpenPanelCore/internal/session"
	"github.com/KevinKickass/OpenPanelCore/internal/settings"
	"github.com/KevinKickass/OpenPanelCore/internal/storage"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State           string `json:"state"`
	ActiveDashboard string `json:"active_dashboard,omitempty"`
	SessionState    string `json:"session_state"`
	WidgetCount     int    `json:"widget_count"`
	ActivePollers   int    `json:"active_pollers"`
}

type LifecycleManager interface {
	Config() *config.Config
	Storage() *storage.PostgresClient
	Templates() settings.Store
	Session() *session.Session
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
