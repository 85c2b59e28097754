package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates produced from very slow early rates.
const maxETA = 24 * time.Hour

// ProgressState tracks the completion fraction of each job of a batch.
type ProgressState struct {
	mu         sync.Mutex
	progresses []float64
	numJobs    int
}

// NewProgressState returns a state for numJobs jobs, all at 0.
func NewProgressState(numJobs int) *ProgressState {
	if numJobs < 0 {
		numJobs = 0
	}
	return &ProgressState{progresses: make([]float64, numJobs), numJobs: numJobs}
}

// Update sets the fraction of job index. Out-of-range indexes are ignored and
// values are clamped to [0, 1].
func (p *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= p.numJobs {
		return
	}
	value = min(max(value, 0), 1)
	p.mu.Lock()
	p.progresses[index] = value
	p.mu.Unlock()
}

// CalculateAverage returns the mean fraction across jobs.
func (p *ProgressState) CalculateAverage() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.numJobs == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.progresses {
		sum += v
	}
	return sum / float64(p.numJobs)
}

// ProgressWithETA adds a smoothed completion-rate estimate to ProgressState.
type ProgressWithETA struct {
	*ProgressState
	numJobs      int
	startTime    time.Time
	progressRate float64 // fraction per second, exponentially smoothed
}

// NewProgressWithETA returns a tracker for numJobs jobs starting now.
func NewProgressWithETA(numJobs int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState: NewProgressState(numJobs),
		numJobs:       numJobs,
		startTime:     time.Now(),
	}
}

// UpdateWithETA records a job update and returns the new average and ETA.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()

	elapsed := time.Since(p.startTime).Seconds()
	if elapsed > 0 && avg > 0 {
		rate := avg / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = 0.3*rate + 0.7*p.progressRate
		}
	}
	return avg, p.GetETA()
}

// GetETA returns the remaining time at the current smoothed rate, or 0 when
// no estimate is available yet.
func (p *ProgressWithETA) GetETA() time.Duration {
	avg := p.CalculateAverage()
	if p.progressRate <= 0 || avg <= 0 {
		return 0
	}
	if avg >= 1 {
		return 0
	}
	seconds := (1 - avg) / p.progressRate
	eta := time.Duration(seconds * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// FormatETA renders an estimate compactly: "45s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders a bar of length cells for a fraction in [0, 1].
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), progress*100, FormatETA(eta))
}
