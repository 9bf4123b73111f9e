package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRootAccess verifies that a run root is readable. In ModeConvert its
// directory must also accept new sibling files.
func CheckRootAccess(path string, mode Mode) Result {
	const name = "Root path"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	switch {
	case info.Mode().IsRegular():
		if err := unix.Access(path, unix.R_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
		}
		if mode == ModeReport {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (file, read ok)", path)}
		}
		parent := filepath.Dir(path)
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot write beside file: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (file, read ok)", path)}
	case info.IsDir():
		if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
		}
		if mode == ModeReport {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (directory, read ok)", path)}
		}
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (directory, read/write ok)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file or directory)", path)}
	}
}
