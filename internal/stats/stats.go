// Package stats samples host health with gopsutil.
package stats

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"
)

// cpuSensorHints identify the CPU sensor among all temperature sensors, in order of preference. The Raspberry Pi
// reports cpu_thermal; x86 boards report coretemp or k10temp.
var cpuSensorHints = []string{"cpu_thermal", "cpu", "soc", "coretemp", "k10temp"}

// Sampler implements the display's system stats collaborator. It is safe for concurrent use.
type Sampler struct {
	// swapped out in tests
	temperatures func(context.Context) ([]sensors.TemperatureStat, error)
	times        func(context.Context, bool) ([]cpu.TimesStat, error)
	memory       func(context.Context) (*mem.VirtualMemoryStat, error)
	uptime       func(context.Context) (uint64, error)

	mu        sync.Mutex
	lastTotal float64
	lastIdle  float64
}

func New() *Sampler {
	return &Sampler{
		temperatures: sensors.TemperaturesWithContext,
		times:        cpu.TimesWithContext,
		memory:       mem.VirtualMemoryWithContext,
		uptime:       host.UptimeWithContext,
	}
}

// CPUTempC returns the CPU temperature in degrees Celsius.
func (s *Sampler) CPUTempC(ctx context.Context) (float64, error) {
	temps, err := s.temperatures(ctx)
	// partial results come with a warnings error
	if len(temps) == 0 {
		if err == nil {
			err = errors.New("no temperature sensors")
		}
		return 0, err
	}
	for _, hint := range cpuSensorHints {
		for _, t := range temps {
			if strings.Contains(strings.ToLower(t.SensorKey), hint) {
				return t.Temperature, nil
			}
		}
	}
	return temps[0].Temperature, nil
}

// CPUUsagePct returns CPU utilisation since the previous call. The first call reports the average since boot.
func (s *Sampler) CPUUsagePct(ctx context.Context) (float64, error) {
	ts, err := s.times(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(ts) == 0 {
		return 0, errors.New("no cpu times")
	}
	total := cpuTotal(ts[0])
	idle := ts[0].Idle + ts[0].Iowait

	s.mu.Lock()
	deltaTotal := total - s.lastTotal
	deltaIdle := idle - s.lastIdle
	s.lastTotal = total
	s.lastIdle = idle
	s.mu.Unlock()

	if deltaTotal <= 0 {
		return 0, nil
	}
	used := max(deltaTotal-deltaIdle, 0)
	return min(used*100/deltaTotal, 100), nil
}

func cpuTotal(t cpu.TimesStat) float64 {
	// guest time is already included in user
	return t.User + t.System + t.Nice + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal
}

// Memory returns the share of memory in use and the total installed memory in bytes.
func (s *Sampler) Memory(ctx context.Context) (float64, uint64, error) {
	vm, err := s.memory(ctx)
	if err != nil {
		return 0, 0, err
	}
	return vm.UsedPercent, vm.Total, nil
}

func (s *Sampler) Uptime(ctx context.Context) (time.Duration, error) {
	secs, err := s.uptime(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
