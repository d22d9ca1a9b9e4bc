package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/embedpro/pids-licensing/internal/domain/service"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

// Dispatcher drains a bounded queue of delivery jobs on one worker
// goroutine. A job gets a fixed number of attempts with linear backoff;
// after the last failure it is dead-lettered: logged with full job identity
// (password excluded) and counted, never silently dropped.
type Dispatcher struct {
	mailer   Mailer
	log      logger.Logger
	queue    chan service.Notification
	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}

	maxAttempts int
	backoff     time.Duration

	delivered  prometheus.Counter
	deadLetter prometheus.Counter
}

// NewDispatcher creates a dispatcher. The counters may be shared registry
// metrics; they are only incremented here.
func NewDispatcher(mailer Mailer, log logger.Logger, delivered, deadLetter prometheus.Counter) *Dispatcher {
	return &Dispatcher{
		mailer:      mailer,
		log:         log.WithComponent("notification"),
		queue:       make(chan service.Notification, constants.NotifyQueueSize),
		stop:        make(chan struct{}),
		maxAttempts: constants.NotifyMaxAttempts,
		backoff:     constants.NotifyRetryBackoff,
		delivered:   delivered,
		deadLetter:  deadLetter,
	}
}

// Start launches the worker. Call Shutdown to drain and stop it.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Enqueue hands a job to the worker without blocking. Returns false when the
// queue is full; the caller decides whether that is fatal.
func (d *Dispatcher) Enqueue(n service.Notification) bool {
	select {
	case d.queue <- n:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting jobs, drains the queue, and waits for the worker
// up to the context deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.stop) })
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.queue:
			d.deliver(job)
		case <-d.stop:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case job := <-d.queue:
					d.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(job service.Notification) {
	ctx := context.Background()
	subject := fmt.Sprintf("License credentials for %s", job.SystemID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\nA license has been generated for %s.\r\n\r\nSystem ID: %s\r\n\r\n"+
			"The activation credentials are in the attached document. The sealed payload below "+
			"can be opened with your activation password:\r\n\r\n%s\r\n",
		job.CustomerName, job.SystemID, job.SealedBlob)
	sheet := CredentialSheet(job.CustomerName, job.SystemID, job.Password)

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.mailer.Send(job.Recipient, subject, body, sheet, "license-credentials.pdf")
		if lastErr == nil {
			d.delivered.Inc()
			d.log.Info(ctx, "credential mail delivered",
				logger.String("system_id", job.SystemID),
				logger.String("recipient", job.Recipient),
				logger.Int("attempt", attempt))
			return
		}
		d.log.Warn(ctx, "credential mail attempt failed",
			logger.String("system_id", job.SystemID),
			logger.Int("attempt", attempt),
			logger.Err(lastErr))
		if attempt < d.maxAttempts {
			time.Sleep(time.Duration(attempt) * d.backoff)
		}
	}

	d.deadLetter.Inc()
	d.log.Error(ctx, "credential mail dead-lettered after retries", lastErr,
		logger.String("system_id", job.SystemID),
		logger.String("customer", job.CustomerName),
		logger.String("recipient", job.Recipient),
		logger.Int("attempts", d.maxAttempts))
}
