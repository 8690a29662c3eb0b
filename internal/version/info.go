package version

import (
	"errors"
	"runtime/debug"
)

type Info struct {
	Arch         string `json:"arch"`
	GoVersion    string `json:"go_version"`
	Revision     string `json:"revision"`
	RevisionTime string `json:"revision_time"`
	Version      string `json:"version"`
}

func GetInfo() (*Info, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("could not read build info")
	}
	info := &Info{
		Version:   buildInfo.Main.Version,
		GoVersion: buildInfo.GoVersion,
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value + info.Revision
		case "vcs.time":
			info.RevisionTime = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				info.Revision += "+dirty"
			}
		case "GOARCH":
			info.Arch = setting.Value
		}
	}
	return info, nil
}
