package hostadapters

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// GopsutilMemoryProbe reports the current process's resident memory via
// gopsutil. There is no portable cross-platform API for GPU/graphics
// memory usage, so GraphicsMB always reports 0; a host with a concrete
// graphics backend can satisfy hostio.MemoryProbe itself if it needs that
// signal.
type GopsutilMemoryProbe struct {
	proc *process.Process
}

func NewGopsutilMemoryProbe() *GopsutilMemoryProbe {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("hostadapters: could not open self process handle for memory probe")
		return &GopsutilMemoryProbe{}
	}
	return &GopsutilMemoryProbe{proc: p}
}

func (m *GopsutilMemoryProbe) ProcessMB() float64 {
	if m.proc == nil {
		return 0
	}
	info, err := m.proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return float64(info.RSS) / (1024 * 1024)
}

func (m *GopsutilMemoryProbe) GraphicsMB() float64 {
	return 0
}
