package webhook

import "time"

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithProcessingTimeout bounds the processing of one delivered batch.
func WithProcessingTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.processingTimeout = timeout
		}
	}
}

// WithAppSecret enables X-Hub-Signature-256 verification.
func WithAppSecret(secret string) HandlerOption {
	return func(h *Handler) {
		h.appSecret = secret
	}
}

// WithMaxBodyBytes caps the accepted request body size.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}
