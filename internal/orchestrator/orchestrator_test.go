package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePass struct {
	name  string
	err   error
	trace *[]string
}

func (p fakePass) Name() string { return p.name }

func (p fakePass) Run(ctx context.Context) error {
	*p.trace = append(*p.trace, p.name)
	return p.err
}

func TestOrchestratorRunsPassesInOrder(t *testing.T) {
	var trace []string
	o := NewOrchestrator(
		fakePass{name: "ingestion", trace: &trace},
		fakePass{name: "timestamps", trace: &trace},
	)

	assert.NoError(t, o.Run(context.Background()))
	assert.Equal(t, []string{"ingestion", "timestamps"}, trace)
}

func TestOrchestratorStopsAtFailedPass(t *testing.T) {
	var trace []string
	failure := errors.New("rpc unavailable")
	o := NewOrchestrator(
		fakePass{name: "ingestion", err: failure, trace: &trace},
		fakePass{name: "timestamps", trace: &trace},
	)

	err := o.Run(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"ingestion"}, trace)
}

func TestOrchestratorSkipsPassesAfterCancel(t *testing.T) {
	var trace []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(fakePass{name: "ingestion", trace: &trace})
	assert.ErrorIs(t, o.Run(ctx), context.Canceled)
	assert.Empty(t, trace)
}
