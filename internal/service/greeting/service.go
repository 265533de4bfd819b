package greeting

import (
	"context"
	"fmt"
	"sync/atomic"
)

// DefaultName is used when the caller does not supply a name.
const DefaultName = "World"

const template = "Hello, %s!"

// Greeting is the value produced for a single request.
type Greeting struct {
	ID      int64  `json:"id"      cbor:"id"      example:"1"`
	Content string `json:"content" cbor:"content" example:"Hello, World!"`
}

// Service issues greetings.
type Service interface {
	Greet(ctx context.Context, name *string) Greeting
	Count() int64
}

// Counter implements Service with a process-lifetime atomic counter.
// The zero value is ready to use and issues ids starting at 1.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a Counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Greet resolves name (nil means DefaultName), takes the next id and formats the content.
// Any non-nil name is used as given, including the empty string.
func (c *Counter) Greet(_ context.Context, name *string) Greeting {
	resolved := DefaultName
	if name != nil {
		resolved = *name
	}
	return Greeting{
		ID:      c.n.Add(1),
		Content: fmt.Sprintf(template, resolved),
	}
}

// Count returns the last id handed out, or zero if none.
func (c *Counter) Count() int64 {
	return c.n.Load()
}
