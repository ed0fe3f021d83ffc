package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Pass is one stage of a run. Passes never overlap.
type Pass interface {
	Name() string
	Run(ctx context.Context) error
}

type Orchestrator struct {
	passes []Pass
}

func NewOrchestrator(passes ...Pass) *Orchestrator {
	return &Orchestrator{passes: passes}
}

// Start runs the passes in order until one fails. SIGINT and SIGTERM cancel
// the running pass, which persists its progress before returning; a second
// signal exits immediately.
func (o *Orchestrator) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Msgf("Received signal %v, initiating graceful shutdown", sig)
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigChan:
			log.Fatal().Msgf("Received second signal %v, exiting", sig)
		case <-done:
		}
	}()

	return o.Run(ctx)
}

// Run executes the passes sequentially under ctx.
func (o *Orchestrator) Run(ctx context.Context) error {
	for _, pass := range o.passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		log.Info().Str("pass", pass.Name()).Msg("Starting pass")
		if err := pass.Run(ctx); err != nil {
			return fmt.Errorf("%s pass: %w", pass.Name(), err)
		}
		log.Info().Str("pass", pass.Name()).Dur("duration", time.Since(start)).Msg("Pass completed")
	}
	return nil
}
