// Package process controls the lifetime of external rendering processes.
package process

import "time"

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 2 * time.Second
