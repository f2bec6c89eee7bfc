package capture

import (
	"context"
	"sync"
)

// UploadRequest describes the single multipart upload of a saved recording.
type UploadRequest struct {
	FilePath string
	Tag      Tag
}

// UploadResult is what the receiver confirmed.
type UploadResult struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Uploader sends one file to the receiver. It blocks until the transfer ends
// and reports bytes sent through progress; total is the file size.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest, progress func(sent, total int64)) (*UploadResult, error)
}

// UploadHandle tracks one running upload.
type UploadHandle struct {
	progress chan int
	done     chan struct{}
	cancel   context.CancelFunc

	mu   sync.Mutex
	last int

	result *UploadResult
	err    error
}

// StartUpload runs req through up in the background. finish, when not nil,
// runs with the outcome before Done is closed.
func StartUpload(ctx context.Context, up Uploader, req UploadRequest, finish func(*UploadResult, error)) *UploadHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &UploadHandle{
		// One slot per percentage point, so report never blocks.
		progress: make(chan int, 101),
		done:     make(chan struct{}),
		cancel:   cancel,
		last:     -1,
	}
	h.report(0)

	go func() {
		defer cancel()

		res, err := up.Upload(ctx, req, func(sent, total int64) {
			if total <= 0 {
				return
			}
			pct := int(sent * 100 / total)
			// 100 is reserved for a confirmed response.
			if pct > 99 {
				pct = 99
			}
			h.report(pct)
		})
		if err != nil {
			err = &TransportError{Err: err}
		} else {
			h.report(100)
		}

		h.result, h.err = res, err
		if finish != nil {
			finish(res, err)
		}
		close(h.progress)
		close(h.done)
	}()
	return h
}

// report publishes pct if it moves the indicator forward.
func (h *UploadHandle) report(pct int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pct <= h.last {
		return
	}
	h.last = pct
	h.progress <- pct
}

// Progress yields non-decreasing percentages from 0 to 100. It is closed when
// the upload ends.
func (h *UploadHandle) Progress() <-chan int { return h.progress }

// Done is closed once the result is available.
func (h *UploadHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the upload ends or ctx is done. A transport failure is
// returned as *TransportError.
func (h *UploadHandle) Wait(ctx context.Context) (*UploadResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the transfer.
func (h *UploadHandle) Cancel() { h.cancel() }
