package poselite

import (
	"errors"
	"testing"
)

// stubInferencer counts closes for pool lifecycle tests
type stubInferencer struct {
	closed bool
}

func (s *stubInferencer) Run(input []float32) (*OutputTensor, error) {
	return NewOutputTensor(make([]float32, OutputChannels*OutputAnchors),
		OutputChannels, OutputAnchors)
}

func (s *stubInferencer) InputWidth() int  { return 640 }
func (s *stubInferencer) InputHeight() int { return 640 }

func (s *stubInferencer) Close() error {
	s.closed = true
	return nil
}

func TestPoolGetReturn(t *testing.T) {

	var made []*stubInferencer

	pool, err := NewPool(2, func() (Inferencer, error) {
		s := &stubInferencer{}
		made = append(made, s)
		return s, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(made) != 2 {
		t.Fatalf("factory called %d times, want 2", len(made))
	}

	a := pool.Get()
	b := pool.Get()

	pool.Return(a)
	pool.Return(b)

	pool.Close()

	for i, s := range made {
		if !s.closed {
			t.Errorf("session %d not closed on pool close", i)
		}
	}
}

func TestPoolFactoryError(t *testing.T) {

	boom := errors.New("no model")

	calls := 0

	_, err := NewPool(3, func() (Inferencer, error) {
		calls++

		if calls == 2 {
			return nil, boom
		}

		return &stubInferencer{}, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
}
