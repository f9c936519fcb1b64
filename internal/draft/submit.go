package draft

import (
	"context"
	"fmt"
	"strings"

	"shipgate/internal/backend"
)

// ValidationError collects every failed pre-submit rule. Rendered inline;
// nothing reaches the backend while it is non-empty.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// OrderCreator is the backend call Submit depends on.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (string, error)
}

// Submit validates the draft, posts it, and on success resets the mutable
// fields. The backend's confirmation message is returned verbatim.
func Submit(ctx context.Context, b OrderCreator, d *Draft) (string, error) {
	if problems := d.Validate(); len(problems) > 0 {
		return "", &ValidationError{Problems: problems}
	}
	msg, err := b.CreateOrder(ctx, d.Payload())
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	d.Reset()
	return msg, nil
}
