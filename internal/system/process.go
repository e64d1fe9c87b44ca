package system

import (
	"os"

	"github.com/mitchellh/go-ps"
)

// ProcessRunning reports whether a process with the given executable
// name is running, excluding the current process.
func ProcessRunning(name string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == name {
			return true, nil
		}
	}

	return false, nil
}
