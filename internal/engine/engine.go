package engine

import (
	"context"
	"time"

	"papertrade-go/internal/catalog"
	"papertrade-go/internal/config"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/quotes"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskContext provides a task with access to the core components.
type TaskContext struct {
	Logger  *zap.Logger
	Cfg     *config.Config
	DB      *gorm.DB
	Ledger  *ledger.Ledger
	Catalog *catalog.Catalog
	Quotes  quotes.ClientInterface
}

// Task is one unit of periodic background work driven by the engine.
type Task interface {
	// Name returns the unique name of the task.
	Name() string

	// Interval returns how often the task should run.
	Interval() time.Duration

	// Run executes one pass of the task.
	Run(ctx TaskContext) error
}

// Engine drives the periodic background tasks: applying approved
// transactions, settling matured trades and refreshing catalog prices.
type Engine struct {
	logger *zap.Logger
	cfg    *config.Config
	tctx   TaskContext
	tasks  []Task
}

// NewEngine creates an engine with the standard task set.
func NewEngine(logger *zap.Logger, cfg *config.Config, db *gorm.DB, ldg *ledger.Ledger, cat *catalog.Catalog, qc quotes.ClientInterface) *Engine {
	tctx := TaskContext{
		Logger:  logger,
		Cfg:     cfg,
		DB:      db,
		Ledger:  ldg,
		Catalog: cat,
		Quotes:  qc,
	}

	tasks := []Task{
		&SettlementTask{interval: time.Duration(cfg.Trading.TickInterval) * time.Second},
	}
	if cfg.Quotes.Enabled && qc != nil {
		tasks = append(tasks, &PriceRefreshTask{
			interval: time.Duration(cfg.Quotes.RefreshInterval) * time.Second,
		})
	}

	return &Engine{
		logger: logger,
		cfg:    cfg,
		tctx:   tctx,
		tasks:  tasks,
	}
}

// Run starts the engine's main loop. It blocks until the context is
// cancelled.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.cfg.Trading.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting engine loop",
		zap.Duration("interval", interval),
		zap.Int("tasks", len(e.tasks)))

	lastRun := make(map[string]time.Time, len(e.tasks))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping engine...")
			return
		case now := <-ticker.C:
			for _, task := range e.tasks {
				if now.Sub(lastRun[task.Name()]) < task.Interval() {
					continue
				}
				lastRun[task.Name()] = now
				if err := task.Run(e.tctx); err != nil {
					e.logger.Error("Task failed",
						zap.String("task", task.Name()),
						zap.Error(err))
				}
			}
		}
	}
}
