// Package pager turns AWS listing calls into pull cursors.
package pager

import (
	"context"
	"errors"
	"strconv"
)

// ErrDone is returned by Next after the final page has been delivered.
var ErrDone = errors.New("pager: no more pages")

// Cursor yields pages of T. It is finite and not restartable.
type Cursor[T any] interface {
	// Next fetches the next page. done is true once the final page has been
	// returned; calling Next again yields ErrDone.
	Next(ctx context.Context) (page []T, done bool, err error)
}

// PageFunc fetches the page identified by token and returns the token of the
// following page, or nil when there is none.
type PageFunc[T any] func(ctx context.Context, token *string) ([]T, *string, error)

// Tokens builds a cursor from a token-driven page function. Paging stops
// when the service repeats the token it was just given.
func Tokens[T any](fetch PageFunc[T]) Cursor[T] {
	return &tokenCursor[T]{fetch: fetch}
}

type tokenCursor[T any] struct {
	fetch    PageFunc[T]
	token    *string
	finished bool
}

func (c *tokenCursor[T]) Next(ctx context.Context) ([]T, bool, error) {
	if c.finished {
		return nil, true, ErrDone
	}
	page, next, err := c.fetch(ctx, c.token)
	if err != nil {
		c.finished = true
		return nil, true, err
	}
	if next == nil || *next == "" || (c.token != nil && *c.token == *next) {
		c.finished = true
		return page, true, nil
	}
	c.token = next
	return page, false, nil
}

// FromPaginator adapts an AWS SDK paginator. Pass the paginator's
// HasMorePages and NextPage methods and a function picking the items out of
// each output:
//
//	p := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{})
//	pager.FromPaginator(p.HasMorePages, p.NextPage, func(o *ec2.DescribeVpcsOutput) []ec2types.Vpc {
//		return o.Vpcs
//	})
func FromPaginator[T, O, Opt any](more func() bool, next func(context.Context, ...func(*Opt)) (O, error), extract func(O) []T) Cursor[T] {
	return &paginatorCursor[T, O, Opt]{more: more, next: next, extract: extract}
}

type paginatorCursor[T, O, Opt any] struct {
	more     func() bool
	next     func(context.Context, ...func(*Opt)) (O, error)
	extract  func(O) []T
	finished bool
}

func (c *paginatorCursor[T, O, Opt]) Next(ctx context.Context) ([]T, bool, error) {
	if c.finished || !c.more() {
		c.finished = true
		return nil, true, ErrDone
	}
	out, err := c.next(ctx)
	if err != nil {
		c.finished = true
		return nil, true, err
	}
	if !c.more() {
		c.finished = true
		return c.extract(out), true, nil
	}
	return c.extract(out), false, nil
}

// Single wraps a call that returns everything in one response.
func Single[T any](fetch func(ctx context.Context) ([]T, error)) Cursor[T] {
	return Tokens(func(ctx context.Context, _ *string) ([]T, *string, error) {
		items, err := fetch(ctx)
		return items, nil, err
	})
}

// Slice returns a cursor over pre-built pages. Used for tests and for
// resources that are already in memory.
func Slice[T any](pages ...[]T) Cursor[T] {
	i := 0
	return Tokens(func(_ context.Context, _ *string) ([]T, *string, error) {
		if len(pages) == 0 {
			return nil, nil, nil
		}
		page := pages[i]
		i++
		if i >= len(pages) {
			return page, nil, nil
		}
		next := strconv.Itoa(i)
		return page, &next, nil
	})
}

// Each drains the cursor, calling fn for every page in order. It stops at the
// first error from the cursor or from fn.
func Each[T any](ctx context.Context, c Cursor[T], fn func(page []T) error) error {
	for {
		page, done, err := c.Next(ctx)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
