package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
	"github.com/jonesrussell/affiliate-tracker/pkg/retry"
)

// flushTimeout is the context timeout for each flush operation.
const flushTimeout = 5 * time.Second

// ClickInserter persists a batch of click events.
type ClickInserter interface {
	BatchInsert(ctx context.Context, events []domain.ClickEvent) error
}

// Writer reads click events from a Buffer and batch-inserts them. Flushes
// happen when the batch reaches flushThreshold or the flushInterval ticker
// fires, whichever comes first. Transient insert failures are retried with
// backoff before the batch is abandoned.
type Writer struct {
	inserter       ClickInserter
	buffer         *Buffer
	log            logger.Logger
	flushInterval  time.Duration
	flushThreshold int
	retryCfg       retry.Config
	wg             sync.WaitGroup
}

// NewWriter creates a Writer draining buffer into inserter.
func NewWriter(
	inserter ClickInserter,
	buffer *Buffer,
	log logger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *Writer {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxDelay = time.Second

	return &Writer{
		inserter:       inserter,
		buffer:         buffer,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
		retryCfg:       retryCfg,
	}
}

// Start launches the background goroutine that reads events and flushes batches.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.flushLoop()
}

// Stop signals the buffer to close, drains what remains, and waits for the
// flush goroutine to finish.
func (w *Writer) Stop() {
	w.buffer.Close()
	w.wg.Wait()
}

func (w *Writer) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ClickEvent, 0, w.flushThreshold)

	for {
		select {
		case event := <-w.buffer.events:
			batch = append(batch, event)
			if len(batch) >= w.flushThreshold {
				w.flush(batch)
				batch = make([]domain.ClickEvent, 0, w.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = make([]domain.ClickEvent, 0, w.flushThreshold)
			}

		case <-w.buffer.closed:
			w.drain(&batch)
			if len(batch) > 0 {
				w.flush(batch)
			}
			return
		}
	}
}

// drain reads all remaining events from the buffer channel into the batch.
func (w *Writer) drain(batch *[]domain.ClickEvent) {
	for {
		select {
		case event := <-w.buffer.events:
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

// flush writes a batch with bounded retries. A batch that still fails after
// retries is dropped and logged; the writer keeps going.
func (w *Writer) flush(batch []domain.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	err := retry.Do(ctx, w.retryCfg, func() error {
		return w.inserter.BatchInsert(ctx, batch)
	})
	if err != nil {
		w.log.Error("Failed to flush click events",
			logger.Error(err),
			logger.Int("batch_size", len(batch)),
		)
		return
	}

	w.log.Debug("Flushed click events",
		logger.Int("total", len(batch)),
	)
}
