package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestWatcher_Run(t *testing.T) {
	// Arrange
	prices := new(MockPriceSource)
	prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(2000.0, nil).Once()
	prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(0.0, errors.New("API down")).Once()
	prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(2500.0, nil)

	svc := NewService(zap.NewNop(), prices, nil, testDefaults)
	results := make(chan Result, 16)
	w := NewWatcher(zap.NewNop(), svc, offsetShortPlan(), time.Millisecond, func(r Result) {
		select {
		case results <- r:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Act
	go func() {
		w.Run(ctx)
		close(done)
	}()

	first := <-results
	second := <-results
	cancel()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	assert.Equal(t, 2000.0, first.MarketPrice)
	assert.Equal(t, 2500.0, second.MarketPrice)
	assert.InDelta(t, 2525, second.Info.Entries[0].Price, 1e-9)
	assert.InDelta(t, 100, second.Info.TotalVolume.Loss.Quoted, 1e-6)
}

func TestWatcher_Run_NilCallback(t *testing.T) {
	// Arrange
	called := make(chan struct{}, 1)
	prices := new(MockPriceSource)
	prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(2000.0, nil).Run(func(mock.Arguments) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	svc := NewService(zap.NewNop(), prices, nil, testDefaults)
	w := NewWatcher(zap.NewNop(), svc, offsetShortPlan(), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Act
	go func() {
		w.Run(ctx)
		close(done)
	}()
	<-called
	cancel()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	prices.AssertExpectations(t)
}
