package fixtures

import (
	"context"
	"fmt"
)

const DefaultLimit = 10

var (
	ErrClosed = fmt.Errorf("closed")
	hits, misses int
)

type Finder interface {
	Find(ctx context.Context, prefix string) ([]string, error)
}

type Catalog struct {
	names []string
}

type Names = []string

type Handler func(name string) error

func (c *Catalog) Find(ctx context.Context, prefix string) ([]string, error) {
	return filter(c.names, prefix), nil
}

func (c Catalog) Len() int {
	return len(c.names)
}

type Page[T any] struct {
	Items []T
}

func (p *Page[T]) First() T {
	return p.Items[0]
}

func filter(names []string, prefix string) []string {
	inner := func() {}
	inner()
	return names
}
