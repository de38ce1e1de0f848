// pkg/blocking/blocking.go - detection of running instances of an installed package.
//
// Replacing or deleting a managed copy while the application is running
// yields confusing half-states, so update and uninstall warn first.

package blocking

import (
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/registry"
)

// IsRunning reports whether the record's managed executable is
// currently running, matched by exact executable path first and by
// process name as a fallback. Inability to inspect the process table is
// treated as not running.
func IsRunning(rec *registry.Record) bool {
	if rec == nil || rec.ManagedExecPath == "" {
		return false
	}

	procs, err := process.Processes()
	if err != nil {
		logging.Debug("Failed to list processes", "error", err)
		return false
	}

	wantName := strings.ToLower(filepath.Base(rec.ManagedExecPath))

	for _, proc := range procs {
		if exe, err := proc.Exe(); err == nil && exe == rec.ManagedExecPath {
			logging.Debug("Found running instance by path", "pid", proc.Pid, "exe", exe)
			return true
		}
		if name, err := proc.Name(); err == nil && strings.ToLower(name) == wantName {
			logging.Debug("Found running instance by name", "pid", proc.Pid, "name", name)
			return true
		}
	}
	return false
}
