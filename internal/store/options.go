package store

// Option tunes a single store primitive.
type Option func(*options)

type options struct {
	tx         *Tx
	clearFirst bool
	silent     bool
}

// WithTx runs the primitive inside an existing transaction so that it
// commits or rolls back together with the other writes of that transaction.
func WithTx(tx *Tx) Option {
	return func(o *options) {
		o.tx = tx
	}
}

// ClearFirst empties the store before a Put. Used for singleton stores such
// as markers and settings queues.
func ClearFirst() Option {
	return func(o *options) {
		o.clearFirst = true
	}
}

// Silent keeps a failure out of remote telemetry. The telemetry sink uses it
// for its own writes.
func Silent() Option {
	return func(o *options) {
		o.silent = true
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
