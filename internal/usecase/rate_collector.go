package usecase

import (
	"context"

	"github.com/ybc112/AetherPay/internal/domain/models"
	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	mid "github.com/ybc112/AetherPay/internal/middleware"
)

// RateCollector collects ticks from the rate stream and processes them.
type RateCollector struct {
	stream  drepo.RateStream
	proc    *RateProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewRateCollector creates a new RateCollector instance.
func NewRateCollector(stream drepo.RateStream, proc *RateProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *RateCollector {
	return &RateCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the rate stream is connected.
func (c *RateCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *RateCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *RateCollector) consume(ctx context.Context, tickCh <-chan *models.RateTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok || err != nil {
				// The stream goroutine closes both channels after the
				// first error; fresh ones are needed after reconnect.
				c.metrics.RecordError("stream")
				if tickCh, errCh = c.reopen(ctx); tickCh == nil {
					return
				}
			}
		case t, ok := <-tickCh:
			if !ok {
				if tickCh, errCh = c.reopen(ctx); tickCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
			c.metrics.RecordLastPrice(t.Pair, t.Price)
		}
	}
}

// reopen reconnects until it succeeds or the context ends, then
// returns fresh read channels. Reconnect sleeps its own delay between
// attempts.
func (c *RateCollector) reopen(ctx context.Context) (<-chan *models.RateTick, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("reconnect")
			continue
		}
		return c.stream.Read(ctx)
	}
}

func (c *RateCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying RateProcessor for lifecycle management.
func (c *RateCollector) Processor() *RateProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *RateCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
