// Package pipeline implements the request-orchestration core: typed
// commands and queries are validated, routed to exactly one handler,
// executed inside a unit-of-work boundary, and returned as a uniform
// success-or-error Result.
//
// The pieces compose at startup: a Registry maps request names to
// handlers, a Dispatcher resolves and invokes them inside a unit of
// work, and a fixed middleware chain (correlation, logging, metrics,
// panic translation, validation) wraps every dispatch identically.
//
//	registry := pipeline.NewRegistry()
//	_ = registry.Add(pipeline.Registration{
//	    Name:    "orders.create",
//	    Kind:    pipeline.Command,
//	    New:     func() pipeline.Request { return &CreateOrder{} },
//	    Handler: handler,
//	})
//
//	p, err := pipeline.New(pipeline.Config{
//	    Registry:   registry,
//	    UnitOfWork: store,
//	    Logger:     logger,
//	    Timeout:    5 * time.Second,
//	})
//
//	res := p.Execute(ctx, &CreateOrder{...})
//
// The Registry and Pipeline are safe for concurrent use after
// configuration is complete. Do not call Registry.Add after the first
// Execute.
package pipeline
