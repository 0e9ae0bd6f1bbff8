package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/api/rest"
	"github.com/KevinKickass/OpenPanelCore/internal/api/websocket"
	"github.com/KevinKickass/OpenPanelCore/internal/config"
	"github.com/KevinKickass/OpenPanelCore/internal/interfaces"
	"github.com/KevinKickass/OpenPanelCore/internal/measure"
	"github.com/KevinKickass/OpenPanelCore/internal/poller"
	"github.com/KevinKickass/OpenPanelCore/internal/session"
	"github.com/KevinKickass/OpenPanelCore/internal/settings"
	"github.com/KevinKickass/OpenPanelCore/internal/storage"
	"go.uber.org/zap"
)

type LifecycleManager struct {
	config        *config.Config
	storage       *storage.PostgresClient
	templateStore settings.Store
	pollerManager *poller.Manager
	panelSession  *session.Session
	logger        *zap.Logger

	restServer *rest.Server
	wsHub      *websocket.Hub

	stateMu      sync.RWMutex
	currentState SystemState

	listenersMu     sync.RWMutex
	statusListeners []chan SystemStatus

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewLifecycleManager(
	pg *storage.PostgresClient,
	cfg *config.Config,
	logger *zap.Logger,
) *LifecycleManager {
	measureClient := measure.NewClient(cfg.Measurement.BaseURL, cfg.Measurement.Timeout, logger)
	pollerManager := poller.NewManager(measureClient, cfg.Poller, logger)
	templateStore := storage.NewTemplateStore(pg)
	panelSession := session.NewSession(logger, pg, pollerManager, templateStore)

	return &LifecycleManager{
		config:          cfg,
		storage:         pg,
		templateStore:   templateStore,
		pollerManager:   pollerManager,
		panelSession:    panelSession,
		logger:          logger,
		wsHub:           websocket.NewHub(logger),
		currentState:    StateInitializing,
		shutdownChan:    make(chan struct{}),
		statusListeners: make([]chan SystemStatus, 0),
	}
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenPanelCore")

	// State: Initializing
	lm.setState(StateInitializing)
	lm.broadcastStatus()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := lm.storage.InitSchema(ctx); err != nil {
		lm.setError(err)
		return fmt.Errorf("failed to init schema: %w", err)
	}

	// WebSocket hub before the pollers, so the first tick already has
	// somewhere to go
	go lm.wsHub.Run()

	lm.pollerManager.SetUpdateFunc(func(state poller.PollState) {
		lm.wsHub.Broadcast(websocket.NewWidgetUpdateMessage(state))
	})

	lm.panelSession.SetStateChangeFunc(func(prev, next session.State) {
		lm.wsHub.Broadcast(websocket.NewSessionStateMessage(string(next), string(prev)))
	})

	// Restore the published dashboard so viewers see live data right
	// after a restart
	if err := lm.loadActiveDashboard(ctx); err != nil {
		lm.logger.Warn("Failed to load active dashboard", zap.Error(err))
		// Continue anyway, not critical
	}

	// Start REST API Server
	if err := lm.startRESTServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	// State: Running
	lm.setState(StateRunning)
	lm.broadcastStatus()

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort))

	return nil
}

func (lm *LifecycleManager) loadActiveDashboard(ctx context.Context) error {
	active, err := lm.storage.Active(ctx)
	if err != nil {
		return fmt.Errorf("failed to query active dashboard: %w", err)
	}
	if active == nil {
		lm.logger.Info("No published dashboard, starting with empty session")
		return nil
	}

	if err := lm.panelSession.Load(ctx, active.Name); err != nil {
		return fmt.Errorf("failed to load dashboard %q: %w", active.Name, err)
	}

	lm.logger.Info("Active dashboard restored",
		zap.String("name", active.Name),
		zap.Int("widgets", len(active.Widgets)))
	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(StateStopping)
		lm.broadcastStatus()

		shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(StateStopped)
		lm.broadcastStatus()

		close(lm.shutdownChan)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	// 1. Stop all widget pollers
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := lm.panelSession.Close(ctx); err != nil {
			errChan <- fmt.Errorf("poller stop failed: %w", err)
		}
	}()

	// 2. REST API Server graceful shutdown
	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}()
	}

	// Wait for all shutdowns
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lm.logger.Info("Graceful shutdown completed")
		return nil
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		return fmt.Errorf("shutdown timeout exceeded")
	case err := <-errChan:
		return err
	}
}

func (lm *LifecycleManager) startRESTServer() error {
	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.wsHub)
	return lm.restServer.Start()
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.currentState = state
}

func (lm *LifecycleManager) setError(err error) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.currentState = StateError
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	state := lm.currentState
	lm.stateMu.RUnlock()

	sessionStatus := lm.panelSession.GetStatus()

	status := interfaces.SystemStatus{
		State:         state.String(),
		SessionState:  string(sessionStatus.State),
		WidgetCount:   sessionStatus.WidgetCount,
		ActivePollers: lm.pollerManager.Count(),
	}
	if sessionStatus.IsPublished {
		status.ActiveDashboard = sessionStatus.Name
	}
	return status
}

func (lm *LifecycleManager) getStatusInternal() SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	return SystemStatus{
		State:     lm.currentState,
		Timestamp: time.Now().Unix(),
	}
}

func (lm *LifecycleManager) broadcastStatus() {
	status := lm.getStatusInternal()

	if lm.wsHub != nil {
		lm.wsHub.Broadcast(websocket.NewSystemStatusMessage(status))
	}

	lm.listenersMu.RLock()
	defer lm.listenersMu.RUnlock()

	for _, listener := range lm.statusListeners {
		select {
		case listener <- status:
		default:
			// Channel full, skip
		}
	}
}

// SubscribeStatus subscribes to status updates
func (lm *LifecycleManager) SubscribeStatus() chan SystemStatus {
	ch := make(chan SystemStatus, 10)

	lm.listenersMu.Lock()
	lm.statusListeners = append(lm.statusListeners, ch)
	lm.listenersMu.Unlock()

	return ch
}

// UnsubscribeStatus unsubscribes from status updates
func (lm *LifecycleManager) UnsubscribeStatus(ch chan SystemStatus) {
	lm.listenersMu.Lock()
	defer lm.listenersMu.Unlock()

	for i, listener := range lm.statusListeners {
		if listener == ch {
			lm.statusListeners = append(lm.statusListeners[:i], lm.statusListeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// Session returns the composition session
func (lm *LifecycleManager) Session() *session.Session {
	return lm.panelSession
}

// Templates returns the settings template store
func (lm *LifecycleManager) Templates() settings.Store {
	return lm.templateStore
}

// Storage returns the storage client
func (lm *LifecycleManager) Storage() *storage.PostgresClient {
	return lm.storage
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}
