// Package sysmon samples host and process resource usage for the dashboard.
package sysmon

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // host CPU, 0.0 .. 100.0
	MemPercent float64 // host memory, 0.0 .. 100.0
	HeapAlloc  uint64  // bytes in use by this process's heap
	NumGC      uint32
	Goroutines int // one per running order during a concurrent batch, plus the runtime's own
}

// Sampler produces Stats. The dashboard takes one so tests can substitute
// fixed values.
type Sampler interface {
	Sample() Stats
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func() Stats

// Sample calls f.
func (f SamplerFunc) Sample() Stats { return f() }

// HostSampler reads the host through gopsutil and the process through the
// runtime.
type HostSampler struct{}

// Sample collects a snapshot. CPU uses interval=0 (delta since the last
// call). Host values stay zero when the platform does not expose them.
func (HostSampler) Sample() Stats {
	var s Stats
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc
	s.NumGC = ms.NumGC
	s.Goroutines = runtime.NumGoroutine()
	return s
}

// Sample is HostSampler{}.Sample.
func Sample() Stats { return HostSampler{}.Sample() }
