package tenant

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Runner wraps the shared transaction runner and applies the actor scope as
// transaction-local session settings before user code runs. Row-level
// security policies read these settings, so every statement inside the
// transaction is already fenced to the current tenant.
type Runner struct {
	inner txRunner
}

// NewRunner builds a scope-aware transaction runner.
func NewRunner(inner txRunner) (*Runner, error) {
	if inner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Runner{inner: inner}, nil
}

// WithTx starts a transaction, pins the scope from ctx onto it, and runs fn.
// Without a scope on the context the session settings stay empty, which makes
// RLS policies deny tenant-scoped rows by default.
func (r *Runner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.inner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := applyScope(ctx, tx); err != nil {
			return err
		}
		return fn(tx)
	})
}

func applyScope(ctx context.Context, tx *gorm.DB) error {
	scope, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	settings := [][2]string{
		{"app.current_role", scope.Role.String()},
	}
	if scope.ClientID != nil {
		settings = append(settings, [2]string{"app.current_client_id", scope.ClientID.String()})
	}
	if scope.ProviderID != nil {
		settings = append(settings, [2]string{"app.current_provider_id", scope.ProviderID.String()})
	}
	for _, setting := range settings {
		// set_config with is_local=true scopes the value to this transaction.
		if err := tx.Exec("SELECT set_config(?, ?, true)", setting[0], setting[1]).Error; err != nil {
			return fmt.Errorf("applying tenant setting %s: %w", setting[0], err)
		}
	}
	return nil
}
