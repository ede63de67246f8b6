package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	"gopkg.in/yaml.v3"
)

// versionInfo is the version command output.
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// versionSearchDirs are checked in order for versions.yaml.
var versionSearchDirs = []string{".", "..", filepath.Join("..", "..")}

func runVersion(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameVersion, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var format string
	formatFlag(fs, &format)
	err := fs.Parse(args)
	if err == nil {
		err = checkFormat(format)
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	info := loadVersionInfo(versionSearchDirs)
	if format == OutputFormatJSON {
		_ = writeJSON(stdout, info)
		return ExitCodeSuccess
	}

	info.writeText(stdout)
	return ExitCodeSuccess
}

// loadVersionInfo layers the first readable versions.yaml in dirs over the
// build information embedded in the binary. Missing values read "unknown".
func loadVersionInfo(dirs []string) versionInfo {
	info := versionInfo{
		Version:   VersionUnknown,
		Commit:    VersionUnknown,
		Branch:    VersionUnknown,
		BuildTime: VersionUnknown,
		GoVersion: runtime.Version(),
	}
	info.applyBuildInfo()

	for _, dir := range dirs {
		sections, ok := readVersionsFile(filepath.Join(dir, VersionsFileName))
		if !ok {
			continue
		}
		setIfPresent(&info.Version, sections[VersionSectionProject][VersionKeyVersion])
		setIfPresent(&info.Commit, sections[VersionSectionGit][VersionKeyCommit])
		setIfPresent(&info.Branch, sections[VersionSectionGit][VersionKeyBranch])
		setIfPresent(&info.BuildTime, sections[VersionSectionBuild][VersionKeyTime])
		setIfPresent(&info.GoVersion, sections[VersionSectionBuild][VersionKeyGoVersion])
		break
	}
	return info
}

// readVersionsFile decodes versions.yaml as section -> key -> value.
func readVersionsFile(path string) (map[string]map[string]string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var sections map[string]map[string]string
	if err := yaml.Unmarshal(content, &sections); err != nil {
		return nil, false
	}
	return sections, true
}

func (v *versionInfo) applyBuildInfo() {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if build.Main.Version != VersionDevel {
		setIfPresent(&v.Version, build.Main.Version)
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case BuildSettingRevision:
			setIfPresent(&v.Commit, setting.Value)
		case BuildSettingTime:
			setIfPresent(&v.BuildTime, setting.Value)
		}
	}
}

func (v versionInfo) writeText(w io.Writer) {
	fmt.Fprintf(w, VersionTextHeader+FmtNewline, CLIName, v.Version)
	fields := [][2]string{
		{VersionKeyCommit, v.Commit},
		{VersionKeyBranch, v.Branch},
		{VersionKeyTime, v.BuildTime},
		{VersionKeyGo, v.GoVersion},
	}
	for _, f := range fields {
		fmt.Fprintf(w, VersionTextField+FmtNewline, f[0]+":", f[1])
	}
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
