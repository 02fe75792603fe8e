package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsByName(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(Settings) (Provider, error) {
		return NewMockProvider(), nil
	})

	p, err := r.New("mock", Settings{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()
	_, err := r.New("nope", Settings{})
	assert.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(Settings) (Provider, error) { return NewMockProvider(), nil })
	r.Register("b", func(Settings) (Provider, error) { return NewMockProvider(), nil })
	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}

func TestMockProviderRecordsCalls(t *testing.T) {
	m := NewMockProvider()
	m.Result = "continued"

	out, err := m.Complete(context.Background(), Request{Prompt: "Hello", MaxTokens: 99})
	require.NoError(t, err)
	assert.Equal(t, "continued", out)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Hello", calls[0].Prompt)
	assert.Equal(t, 99, calls[0].MaxTokens)
}

func TestMockProviderHonorsContext(t *testing.T) {
	m := NewMockProvider()
	m.Delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Complete(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
