package source_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricetruth-service/internal/infrastructure/source"
)

func TestRateLimited_PassesThrough(t *testing.T) {
	inner := source.NewStatic("amazon", decimal.RequireFromString("19.99"), "EUR")
	a := source.NewRateLimited(inner, 100, 1)

	obs := a.Fetch(context.Background(), "lego star wars")
	require.True(t, obs.Success)
	require.Equal(t, "amazon", a.Name())
}

func TestRateLimited_DeniesWhenExhausted(t *testing.T) {
	inner := source.NewStatic("amazon", decimal.RequireFromString("19.99"), "EUR")
	a := source.NewRateLimited(inner, 0.0001, 1)

	first := a.Fetch(context.Background(), "lego star wars")
	require.True(t, first.Success)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	second := a.Fetch(ctx, "lego star wars")
	require.False(t, second.Success)
	require.Equal(t, "rate limited", second.Error)
}
