package cpu

import "context"

// Info describes the host processor a session runs on
type Info struct {
	Model     string  `json:"model"`
	Cores     int     `json:"cores"`
	Threads   int     `json:"threads"`
	Frequency float64 `json:"frequency_mhz"`
	Governor  string  `json:"governor,omitempty"`
}

// Reader interface for host CPU information
type Reader interface {
	GetInfo(ctx context.Context) (*Info, error)
}

// NewReader creates a new CPU reader for the current platform. sysfsRoot is
// the cpu topology root used to look up the scaling governor.
func NewReader(sysfsRoot string) Reader {
	return newPlatformReader(sysfsRoot)
}
