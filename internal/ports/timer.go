package ports

import "time"

// DrainTimer is a restartable one-shot timer. Each call to Arm starts a new
// period and returns a channel that receives once when it elapses.
type DrainTimer interface {
	Arm() <-chan time.Time
}
