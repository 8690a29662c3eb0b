package system

import (
	"bufio"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mackerelio/go-osstat/cpu"
	"github.com/mackerelio/go-osstat/memory"
	"github.com/mackerelio/go-osstat/network"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const defaultCPUSampleInterval = 250 * time.Millisecond

// Snapshot is a point-in-time view of the host, independent of any
// health verdict.
type Snapshot struct {
	Platform string      `json:"platform"`
	Release  string      `json:"release"`
	Machine  string      `json:"machine"`
	Arch     string      `json:"arch"`
	Uptime   float64     `json:"uptime"`
	CPU      CPUInfo     `json:"cpu"`
	Memory   MemoryInfo  `json:"memory"`
	Drive    DriveInfo   `json:"drive"`
	Network  NetworkInfo `json:"network"`
}

type CPUInfo struct {
	Usage float64 `json:"usage"`
	CPUs  int     `json:"cpus"`
	Speed float64 `json:"speed"`
}

type MemoryInfo struct {
	TotalMemMb        float64 `json:"totalMemMb"`
	UsedMemMb         float64 `json:"usedMemMb"`
	FreeMemMb         float64 `json:"freeMemMb"`
	UsedMemPercentage float64 `json:"usedMemPercentage"`
	FreeMemPercentage float64 `json:"freeMemPercentage"`
}

type DriveInfo struct {
	TotalGb        float64 `json:"totalGb"`
	UsedGb         float64 `json:"usedGb"`
	FreeGb         float64 `json:"freeGb"`
	UsedPercentage float64 `json:"usedPercentage"`
	FreePercentage float64 `json:"freePercentage"`
}

type NetworkInfo struct {
	InputBytes  uint64 `json:"inputBytes"`
	OutputBytes uint64 `json:"outputBytes"`
}

type CollectorConfig struct {
	DrivePath string

	// CPUSampleInterval separates the two cumulative CPU samples used
	// to compute an instantaneous usage percentage.
	CPUSampleInterval time.Duration
}

// Collector gathers host metrics for the infos endpoint.
type Collector struct {
	fs       afero.Fs
	provider Provider
	cfg      CollectorConfig
}

func NewCollector(fs afero.Fs, provider Provider, cfg CollectorConfig) *Collector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if cfg.DrivePath == "" {
		cfg.DrivePath = "/"
	}
	if cfg.CPUSampleInterval <= 0 {
		cfg.CPUSampleInterval = defaultCPUSampleInterval
	}
	return &Collector{fs: fs, provider: provider, cfg: cfg}
}

func (c *Collector) Snapshot(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return nil, fmt.Errorf("failed to read uname: %w", err)
	}
	snapshot.Release = unix.ByteSliceToString(uts.Release[:])
	snapshot.Machine = unix.ByteSliceToString(uts.Machine[:])

	up, err := uptime.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read uptime: %w", err)
	}
	snapshot.Uptime = up.Seconds()

	cpuInfo, err := c.cpuInfo(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.CPU = cpuInfo

	mem, err := memory.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory stats: %w", err)
	}
	snapshot.Memory = memoryInfo(mem)

	usage, err := c.provider.FilesystemUsage(c.cfg.DrivePath)
	if err != nil {
		return nil, err
	}
	snapshot.Drive = driveInfo(usage)

	netStats, err := network.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read network stats: %w", err)
	}
	for _, iface := range netStats {
		if iface.Name == "lo" {
			continue
		}
		snapshot.Network.InputBytes += iface.RxBytes
		snapshot.Network.OutputBytes += iface.TxBytes
	}

	return snapshot, nil
}

// cpuInfo computes usage from the delta of two cumulative samples. A
// single cumulative sample only yields usage-since-boot, which grows
// monotonically instead of tracking the current load.
func (c *Collector) cpuInfo(ctx context.Context) (CPUInfo, error) {
	first, err := cpu.Get()
	if err != nil {
		return CPUInfo{}, fmt.Errorf("failed to read cpu stats: %w", err)
	}

	select {
	case <-ctx.Done():
		return CPUInfo{}, ctx.Err()
	case <-time.After(c.cfg.CPUSampleInterval):
	}

	second, err := cpu.Get()
	if err != nil {
		return CPUInfo{}, fmt.Errorf("failed to read cpu stats: %w", err)
	}

	info := CPUInfo{
		CPUs:  second.CPUCount,
		Speed: c.cpuSpeedMHz(),
	}
	total := second.Total - first.Total
	if total > 0 {
		idle := second.Idle - first.Idle
		info.Usage = (1 - float64(idle)/float64(total)) * 100
	}
	return info, nil
}

// cpuSpeedMHz scans /proc/cpuinfo for the first reported clock speed.
// Returns 0 when unavailable, e.g. on non-Linux hosts.
func (c *Collector) cpuSpeedMHz() float64 {
	file, err := c.fs.Open("/proc/cpuinfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu MHz") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err == nil {
			return speed
		}
	}
	return 0
}

func memoryInfo(mem *memory.Stats) MemoryInfo {
	info := MemoryInfo{
		TotalMemMb: toMb(mem.Total),
		UsedMemMb:  toMb(mem.Used),
		FreeMemMb:  toMb(mem.Free),
	}
	if mem.Total > 0 {
		info.UsedMemPercentage = float64(mem.Used) / float64(mem.Total) * 100
		info.FreeMemPercentage = float64(mem.Free) / float64(mem.Total) * 100
	}
	return info
}

func driveInfo(usage FilesystemUsage) DriveInfo {
	info := DriveInfo{
		TotalGb: toGb(usage.TotalBytes),
		UsedGb:  toGb(usage.UsedBytes),
		FreeGb:  toGb(usage.TotalBytes - usage.UsedBytes),
	}
	if usage.TotalBytes > 0 {
		info.UsedPercentage = float64(usage.UsedBytes) / float64(usage.TotalBytes) * 100
		info.FreePercentage = 100 - info.UsedPercentage
	}
	return info
}

func toMb(bytes uint64) float64 {
	return float64(bytes) / (1 << 20)
}

func toGb(bytes uint64) float64 {
	return float64(bytes) / (1 << 30)
}
