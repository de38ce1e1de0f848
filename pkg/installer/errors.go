// pkg/installer/errors.go - error kinds surfaced by the install workflow.

package installer

import "errors"

var (
	// ErrInvalidPackage means the opened file is not a recognizable
	// AppImage.
	ErrInvalidPackage = errors.New("not a valid AppImage package")

	// ErrExtraction means no metadata record could be produced.
	ErrExtraction = errors.New("metadata extraction failed")

	// ErrStorage covers copy and permission failures in managed storage.
	ErrStorage = errors.New("storage operation failed")

	// ErrRegistry covers registry read/write failures.
	ErrRegistry = errors.New("registry operation failed")

	// ErrLauncherEntry covers desktop-entry creation and removal
	// failures.
	ErrLauncherEntry = errors.New("launcher entry operation failed")

	// ErrLaunch means the installed application could not be started.
	ErrLaunch = errors.New("application launch failed")
)
