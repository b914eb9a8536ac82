package svcbot

import "time"

// Default settings applied by the constructors in this package
const (
	// DefaultQueueSize is the default capacity of the dispatcher's inbound
	// event queue
	DefaultQueueSize = 100

	// DefaultCallTimeout is the default response-header timeout for
	// supervisord XML-RPC calls
	DefaultCallTimeout = 10 * time.Second

	// DefaultWatchDebounce is the default debounce for config file watching
	DefaultWatchDebounce = 250 * time.Millisecond

	// DefaultUpdateTimeout is the default Telegram long-poll timeout in
	// seconds
	DefaultUpdateTimeout = 30
)
