package system

import (
	"fmt"
	"os"
	"runtime"

	sigar "github.com/elastic/gosigar"
	"github.com/spf13/afero"
)

// FilesystemUsage is an opaque reading of one mounted filesystem.
type FilesystemUsage struct {
	TotalBytes uint64
	UsedBytes  uint64
}

// Provider supplies the raw readings the threshold indicators compare
// against their limits. Calls are synchronous and expected to be fast.
type Provider interface {
	FilesystemUsage(path string) (FilesystemUsage, error)
	HeapAlloc() (uint64, error)
	ResidentMemory() (uint64, error)
}

type sigarProvider struct {
	fs afero.Fs
}

// NewProvider returns a Provider backed by gosigar and the Go runtime.
func NewProvider(fs afero.Fs) Provider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &sigarProvider{fs: fs}
}

func (p *sigarProvider) FilesystemUsage(path string) (FilesystemUsage, error) {
	exists, err := afero.DirExists(p.fs, path)
	if err != nil {
		return FilesystemUsage{}, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if !exists {
		return FilesystemUsage{}, fmt.Errorf("path %q does not exist", path)
	}

	var usage sigar.FileSystemUsage
	if err := usage.Get(path); err != nil {
		return FilesystemUsage{}, fmt.Errorf("failed to read filesystem usage for %q: %w", path, err)
	}

	// gosigar reports filesystem sizes in kilobytes.
	return FilesystemUsage{
		TotalBytes: usage.Total * 1024,
		UsedBytes:  usage.Used * 1024,
	}, nil
}

func (p *sigarProvider) HeapAlloc() (uint64, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc, nil
}

func (p *sigarProvider) ResidentMemory() (uint64, error) {
	var mem sigar.ProcMem
	if err := mem.Get(os.Getpid()); err != nil {
		return 0, fmt.Errorf("failed to read process memory: %w", err)
	}
	return mem.Resident, nil
}
