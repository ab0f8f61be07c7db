package client

import (
	"context"
	"errors"
	"sync"
)

// ViewState is the lifecycle of a list/detail screen.
type ViewState string

const (
	StateIdle       ViewState = "idle"
	StateLoading    ViewState = "loading"
	StateLoaded     ViewState = "loaded"
	StateSubmitting ViewState = "submitting"
)

var ErrViewBusy = errors.New("uma operação já está em andamento")

// ListView keeps a screen's item list in sync with the backend. Every entity
// screen runs the same machine: Refresh loads the list, Submit runs one
// mutation and re-fetches on success. A failed mutation lands in a single
// submit-error slot and the previous items stay visible.
type ListView[T any] struct {
	fetch func(context.Context) ([]T, error)

	mu        sync.Mutex
	state     ViewState
	items     []T
	submitErr error
}

func NewListView[T any](fetch func(context.Context) ([]T, error)) *ListView[T] {
	return &ListView[T]{fetch: fetch, state: StateIdle}
}

func (v *ListView[T]) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ListView[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// SubmitError returns the error of the last failed submission, cleared by
// the next successful Submit or Refresh.
func (v *ListView[T]) SubmitError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitErr
}

func (v *ListView[T]) begin(next ViewState) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateLoading || v.state == StateSubmitting {
		return ErrViewBusy
	}
	v.state = next
	return nil
}

// Refresh replaces the item list from the backend.
func (v *ListView[T]) Refresh(ctx context.Context) error {
	if err := v.begin(StateLoading); err != nil {
		return err
	}
	items, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = StateLoaded
	if err != nil {
		return err
	}
	v.items = items
	v.submitErr = nil
	return nil
}

// Submit runs one mutation (create, edit or delete) and, when it succeeds,
// re-fetches the list so the screen reflects the server's state. Local
// validation failures and backend errors end up in the submit-error slot;
// the screen itself never crashes out of Loaded.
func (v *ListView[T]) Submit(ctx context.Context, mutate func(context.Context) error) error {
	if err := v.begin(StateSubmitting); err != nil {
		return err
	}
	err := mutate(ctx)
	var items []T
	if err == nil {
		items, err = v.fetch(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = StateLoaded
	v.submitErr = err
	if err != nil {
		return err
	}
	v.items = items
	return nil
}
