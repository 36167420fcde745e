package panels

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/1broseidon/viewwall/internal/viewer"
)

// Stats is one diagnostic sample.
type Stats struct {
	At            time.Time
	CPUPercent    float64
	MemUsed       uint64
	MemTotal      uint64
	MemPercent    float64
	Uptime        time.Duration
	Goroutines    int
	HeapAlloc     uint64
	Viewers       int
	ViewersByType map[string]int
}

// Diagnostic samples host and wall statistics on demand.
type Diagnostic struct {
	*viewer.Base
	last Stats
}

func NewDiagnostic(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	d := &Diagnostic{}
	d.Base = viewer.NewBase(env, control(viewer.TypeDiagnostic, diagnosticSize), d)
	fixSize(d.Base, diagnosticSize)
	d.Refresh()
	return d, nil
}

// Refresh takes a new sample. Host probes that fail leave their fields zero.
func (d *Diagnostic) Refresh() Stats {
	s := Stats{At: time.Now(), Goroutines: runtime.NumGoroutine(), ViewersByType: map[string]int{}}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	} else if err != nil {
		d.Logger().Debug("cpu probe failed", "error", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsed, s.MemTotal, s.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	} else {
		d.Logger().Debug("memory probe failed", "error", err)
	}
	if up, err := host.Uptime(); err == nil {
		s.Uptime = time.Duration(up) * time.Second
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc

	if inspect := d.Env().Inspect; inspect != nil {
		for _, info := range inspect() {
			s.Viewers++
			s.ViewersByType[info.Type]++
		}
	}
	d.last = s
	return s
}

func (d *Diagnostic) Last() Stats { return d.last }

// StateViewer lists the live viewers and shows one in detail.
type StateViewer struct {
	*viewer.Base
	selected string
}

func NewStateViewer(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	s := &StateViewer{}
	s.Base = viewer.NewBase(env, control(viewer.TypeStateViewer, diagnosticSize), s)
	fixSize(s.Base, diagnosticSize)
	return s, nil
}

// Items describes every live viewer.
func (s *StateViewer) Items() []viewer.Info {
	if inspect := s.Env().Inspect; inspect != nil {
		return inspect()
	}
	return nil
}

func (s *StateViewer) Select(id string) { s.selected = id }

// Detail returns the selected viewer, if it is still live.
func (s *StateViewer) Detail() (viewer.Info, bool) {
	for _, info := range s.Items() {
		if info.ID == s.selected {
			return info, true
		}
	}
	return viewer.Info{}, false
}
