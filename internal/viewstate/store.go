// Package viewstate mantiene el estado local de las vistas del cliente.
// Las mutaciones son optimistas: se aplican antes de confirmar con el servidor
// y se revierten con su inversa exacta si la confirmación falla.
package viewstate

import (
	"context"
	"sync"

	"petora-connect/internal/ports/changefeed"
)

// Op es una mutación local con su inversa. Inverse(Forward(s)) debe ser s.
type Op[S any] struct {
	Name    string
	Forward func(S) S
	Inverse func(S) S
}

// CommitFunc confirma la mutación; recibe el estado ya aplicado.
type CommitFunc[S any] func(ctx context.Context, next S) error

type Store[S any] struct {
	mu       sync.Mutex
	state    S
	notifier Notifier
}

func NewStore[S any](initial S, n Notifier) *Store[S] {
	if n == nil {
		n = NopNotifier()
	}
	return &Store[S]{state: initial, notifier: n}
}

func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update aplica fn al estado actual (eventos del servidor, cargas iniciales).
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// Do aplica op.Forward, corre commit y emite exactamente una notificación terminal.
// Si commit falla, op.Inverse se aplica sobre el estado *actual*, que puede
// incluir eventos recibidos mientras tanto; no se vuelve a pedir nada al servidor.
func (s *Store[S]) Do(ctx context.Context, op Op[S], commit CommitFunc[S]) error {
	next := s.Update(op.Forward)

	if err := commit(ctx, next); err != nil {
		s.Update(op.Inverse)
		s.notifier.Notify(Notification{Op: op.Name, Outcome: Failed, Err: err})
		return err
	}
	s.notifier.Notify(Notification{Op: op.Name, Outcome: Succeeded})
	return nil
}

// Follow aplica cada evento con reduce hasta que se cancela ctx o se cierra events.
// Cancelar ctx solo corta la suscripción; los commits en curso siguen su curso.
func (s *Store[S]) Follow(ctx context.Context, events <-chan changefeed.Event, reduce func(S, changefeed.Event) S) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.Update(func(cur S) S { return reduce(cur, ev) })
		}
	}
}
