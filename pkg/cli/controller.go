package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/adapter"
	"github.com/m-mizutani/visaire/pkg/repository"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
)

// newController wires the service client, storage backend and ui into a
// controller. The returned function releases storage resources.
func (cfg *config) newController(ctx context.Context, ui animation.UI) (*animation.Controller, func(), error) {
	service, err := cfg.newService()
	if err != nil {
		return nil, nil, err
	}

	kv, closeKV, err := cfg.newKV(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create history storage", goerr.V("storage", cfg.storage))
	}

	ctrl, err := animation.New(animation.NewInput{
		Service:  service,
		Resolver: service,
		Platform: adapter.NewTerminal(),
		UI:       ui,
		Store:    repository.NewHistoryStore(kv),
	})
	if err != nil {
		closeKV()
		return nil, nil, goerr.Wrap(err, "failed to create controller")
	}

	return ctrl, closeKV, nil
}
