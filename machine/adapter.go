package machine

import "time"

// An Adapter is the connection to the Z controller.
type Adapter interface {
	// Send forwards a line and blocks until it is acknowledged and wait
	// has passed.
	Send(line string, wait time.Duration) error
}
