// pkg/installer/installer.go - the install/update/uninstall workflow for opened packages.
//
// A package-open event resolves through a small state machine: invalid
// files are rejected, known registry keys offer uninstall-or-launch, new
// files are either fresh installs or version transitions of an already
// installed logical application. The workflow keeps the registry, the
// managed copy and the desktop entry mutually consistent, compensating
// with an uninstall when a partially completed install cannot finish.

package installer

import (
	"fmt"
	"path/filepath"

	"github.com/linuxadmins/appman/pkg/blocking"
	"github.com/linuxadmins/appman/pkg/compare"
	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/dialog"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/pkginfo"
	"github.com/linuxadmins/appman/pkg/registry"
	"github.com/linuxadmins/appman/pkg/storage"
	"github.com/linuxadmins/appman/pkg/utils"
)

// State is a resolution of a package-open event. The candidate states
// are intermediate: they name which prompt the user is facing before
// the event settles into a terminal state.
type State string

const (
	StateRejectedInvalid       State = "rejected_invalid"
	StateAlreadyRegistered     State = "already_registered"
	StateFreshInstallCandidate State = "fresh_install_candidate"
	StateUpdateCandidate       State = "version_update_candidate"
	StateInstalled             State = "installed"
	StateUninstalled           State = "uninstalled"
	StateCancelled             State = "cancelled"
	StateFailed                State = "failed"
)

// DesktopIntegration is the launcher-entry and launch surface the
// workflow drives. Satisfied by desktop.Integration.
type DesktopIntegration interface {
	CreateDesktopFile(rec *registry.Record) (string, error)
	RemoveDesktopFile(path string) error
	CreateShortcut(rec *registry.Record) error
	RemoveShortcut(rec *registry.Record) error
	Launch(execPath string) error
}

// metadataExtractor is the extraction surface the workflow needs,
// abstracted so tests can substitute canned records.
type metadataExtractor interface {
	Extract(path string) *registry.Record
}

// Handler orchestrates the workflow for one package-open event.
type Handler struct {
	cfg       *config.Configuration
	reg       *registry.Registry
	store     *storage.Manager
	extractor metadataExtractor
	desktop   DesktopIntegration
	dialogs   dialog.Dialogs
}

// NewHandler wires a Handler from its collaborators.
func NewHandler(cfg *config.Configuration, desk DesktopIntegration, dialogs dialog.Dialogs) *Handler {
	return &Handler{
		cfg:       cfg,
		reg:       registry.New(cfg.RegistryPath),
		store:     storage.New(cfg.StoragePath),
		extractor: pkginfo.New(cfg),
		desktop:   desk,
		dialogs:   dialogs,
	}
}

// Registry exposes the handler's registry, for the management view.
func (h *Handler) Registry() *registry.Registry {
	return h.reg
}

// Uninstall removes an installed record, for the management view's
// uninstall-by-name path. A running installed copy is surfaced as a
// warning prompt first; declining it cancels the removal.
func (h *Handler) Uninstall(rec *registry.Record) (State, error) {
	if !h.confirmWhileRunning(rec, "Removing") {
		return StateCancelled, nil
	}
	if err := h.uninstallRecord(rec); err != nil {
		return StateFailed, err
	}
	return StateUninstalled, nil
}

// Handle processes one opened package file and returns the terminal
// state. User cancellation is a successful outcome (CANCELLED state,
// nil error): declining a prompt is not a failure of the tool.
func (h *Handler) Handle(path string) (State, error) {
	if !pkginfo.IsAppImage(path) {
		h.dialogs.ShowError("Invalid File",
			fmt.Sprintf("The file '%s' is not a valid AppImage file.", filepath.Base(path)))
		return StateRejectedInvalid, ErrInvalidPackage
	}

	if h.reg.IsRegistered(path) {
		if rec := h.reg.Get(path); rec != nil {
			return h.handleRegistered(rec)
		}
		// Corrupt entry under a known key: treat as unregistered.
		logging.Warn("Registry entry unreadable, treating package as new", "path", path)
	}

	return h.handleUnregistered(path)
}

// handleRegistered offers uninstall-or-launch for a package whose
// source path is already a registry key.
func (h *Handler) handleRegistered(rec *registry.Record) (State, error) {
	uninstall := h.dialogs.AskYesNo("AppImage Already Installed",
		fmt.Sprintf("The AppImage '%s' is already installed on your system.\n\n"+
			"What would you like to do?\n\n"+
			"• Click 'Yes' to uninstall it\n"+
			"• Click 'No' to launch it", rec.Name))

	if uninstall {
		if !h.confirmWhileRunning(rec, "Removing") {
			return StateCancelled, nil
		}
		if err := h.uninstallRecord(rec); err != nil {
			h.dialogs.ShowError("Uninstall Error",
				fmt.Sprintf("Error during uninstallation: %v", err))
			return StateFailed, err
		}
		h.dialogs.ShowInfo("Uninstall Successful",
			fmt.Sprintf("'%s' has been successfully uninstalled from your system.", rec.Name))
		return StateUninstalled, nil
	}

	if err := h.launch(rec.ManagedExecPath, rec.Name); err != nil {
		return StateAlreadyRegistered, err
	}
	return StateAlreadyRegistered, nil
}

// handleUnregistered extracts metadata and routes to a fresh install or
// a version transition of an installed logical application.
func (h *Handler) handleUnregistered(path string) (State, error) {
	rec := h.extractor.Extract(path)
	if rec == nil {
		h.dialogs.ShowError("Extraction Failed",
			"Could not extract information from the AppImage file.")
		return StateFailed, ErrExtraction
	}

	existing := h.reg.FindInstalledVersion(rec)
	if existing == nil {
		logging.Debug("Resolved package-open event", "state", StateFreshInstallCandidate, "name", rec.Name)
		return h.freshInstall(rec)
	}
	logging.Debug("Resolved package-open event", "state", StateUpdateCandidate,
		"name", rec.Name, "installed_version", existing.Version, "new_version", rec.Version)
	return h.versionTransition(rec, existing)
}

// freshInstall installs a package with no prior installation of the
// same logical application.
func (h *Handler) freshInstall(rec *registry.Record) (State, error) {
	install := h.dialogs.AskYesNo("Install AppImage?",
		fmt.Sprintf("Would you like to install '%s' to your system?\n\n"+
			"This will:\n"+
			"• Create a launcher shortcut\n"+
			"• Add it to your applications menu\n"+
			"• Launch the application\n\n"+
			"Click 'Yes' to install and launch, or 'No' to cancel.", rec.Name))
	if !install {
		return StateCancelled, nil
	}

	if err := h.installRecord(rec); err != nil {
		h.dialogs.ShowError("Installation Failed", fmt.Sprintf("%v", err))
		return StateFailed, err
	}

	h.dialogs.ShowInfo("Installation Successful",
		fmt.Sprintf("'%s' has been successfully installed!\n\n"+
			"You can now find it in your applications menu.", rec.Name))

	if err := h.launch(rec.ManagedExecPath, rec.Name); err != nil {
		return StateInstalled, err
	}
	return StateInstalled, nil
}

// versionTransition supersedes an installed logical application with
// the opened package: an update, a reinstall or a downgrade depending
// on the version comparison.
func (h *Handler) versionTransition(rec, existing *registry.Record) (State, error) {
	verdict := compare.Versions(rec.Version, existing.Version)

	var title, question, reported string
	switch {
	case verdict > 0:
		title = "Update Available"
		question = fmt.Sprintf("A newer version of '%s' is available.\n\n"+
			"Installed: %s\nNew: %s\n\nWould you like to update?",
			existing.Name, existing.Version, rec.Version)
		reported = "updated"
	case verdict == 0:
		title = "Reinstall AppImage?"
		question = fmt.Sprintf("'%s' version %s is already installed.\n\n"+
			"Would you like to reinstall it?", existing.Name, existing.Version)
		reported = "reinstalled"
	default:
		title = "Downgrade AppImage?"
		question = fmt.Sprintf("An older version of '%s' was opened.\n\n"+
			"Installed: %s\nOpened: %s\n\nWould you like to downgrade?",
			existing.Name, existing.Version, rec.Version)
		reported = "downgraded"
	}

	if !h.dialogs.AskYesNo(title, question) {
		return StateCancelled, nil
	}

	if !h.confirmWhileRunning(existing, "Replacing") {
		return StateCancelled, nil
	}

	if err := h.updateRecord(rec, existing); err != nil {
		h.dialogs.ShowError("Installation Failed", fmt.Sprintf("%v", err))
		return StateFailed, err
	}

	h.dialogs.ShowInfo("Installation Successful",
		fmt.Sprintf("'%s' has been successfully %s to version %s.", rec.Name, reported, rec.Version))

	if err := h.launch(rec.ManagedExecPath, rec.Name); err != nil {
		return StateInstalled, err
	}
	return StateInstalled, nil
}

// installRecord performs the install transaction: copy to storage,
// register, create the desktop entry, then persist the entry path. Any
// non-recoverable failure unwinds what was already done so no
// half-installed package is left behind.
func (h *Handler) installRecord(rec *registry.Record) error {
	target, err := h.store.CopyToStorage(rec.SourcePath, rec.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	rec.ManagedExecPath = target

	if sum, err := utils.FileSHA256(target); err == nil {
		rec.Checksum = sum
	}

	if err := h.reg.Register(rec); err != nil {
		h.removeManagedCopy(target)
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	desktopPath, err := h.desktop.CreateDesktopFile(rec)
	if err != nil {
		// Compensating transaction: take back the registration and the
		// copy rather than leaving an entry that cannot be launched
		// from the menu.
		if uerr := h.uninstallRecord(rec); uerr != nil {
			logging.Error("Rollback after launcher-entry failure incomplete", "error", uerr)
		}
		return fmt.Errorf("%w: %v", ErrLauncherEntry, err)
	}
	rec.DesktopFilePath = desktopPath

	if err := h.reg.Register(rec); err != nil {
		if uerr := h.uninstallRecord(rec); uerr != nil {
			logging.Error("Rollback after registry failure incomplete", "error", uerr)
		}
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	if err := h.desktop.CreateShortcut(rec); err != nil {
		logging.Warn("Desktop shortcut creation failed", "error", err)
	}

	logging.Info("Installed package", "name", rec.Name, "version", rec.Version, "exec", rec.ManagedExecPath)
	return nil
}

// uninstallRecord removes the desktop entry, the shortcut, the managed
// copy and the registry entry. Every step is attempted regardless of
// earlier failures; the operation succeeds iff unregistration does.
func (h *Handler) uninstallRecord(rec *registry.Record) error {
	if rec.DesktopFilePath != "" {
		if err := h.desktop.RemoveDesktopFile(rec.DesktopFilePath); err != nil {
			logging.Warn("Desktop entry removal failed", "path", rec.DesktopFilePath, "error", err)
		}
	}
	if err := h.desktop.RemoveShortcut(rec); err != nil {
		logging.Warn("Desktop shortcut removal failed", "error", err)
	}

	h.removeManagedCopy(rec.ManagedExecPath)

	if err := h.reg.Unregister(rec.SourcePath); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}
	logging.Info("Uninstalled package", "name", rec.Name, "path", rec.SourcePath)
	return nil
}

// updateRecord supersedes an existing installation with a new record.
// The old desktop entry path and icon are preserved as fallbacks; the
// old copy and registry key go away before the new install runs.
func (h *Handler) updateRecord(rec, existing *registry.Record) error {
	preservedIcon := existing.IconReference

	h.removeManagedCopy(existing.ManagedExecPath)

	if err := h.reg.Unregister(existing.SourcePath); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	if rec.IconReference == "" || rec.IconReference == pkginfo.GenericIcon {
		if preservedIcon != "" {
			rec.IconReference = preservedIcon
		}
	}

	if existing.DesktopFilePath != "" {
		if err := h.desktop.RemoveDesktopFile(existing.DesktopFilePath); err != nil {
			logging.Warn("Old desktop entry removal failed", "path", existing.DesktopFilePath, "error", err)
		}
	}
	if err := h.desktop.RemoveShortcut(existing); err != nil {
		logging.Warn("Old desktop shortcut removal failed", "error", err)
	}

	return h.installRecord(rec)
}

// confirmWhileRunning reports whether a removal or replacement of an
// installed record may proceed: true immediately when its managed copy
// is not running, otherwise the user's answer to a warning prompt.
func (h *Handler) confirmWhileRunning(rec *registry.Record, verb string) bool {
	if !blocking.IsRunning(rec) {
		return true
	}
	return h.dialogs.AskYesNo("Application Running",
		fmt.Sprintf("'%s' appears to be running.\n\n"+
			"%s it now may disrupt the running instance. Continue?", rec.Name, verb))
}

// removeManagedCopy deletes a copy from managed storage; paths outside
// the managed directory are refused by the storage layer and only
// logged here.
func (h *Handler) removeManagedCopy(path string) {
	if path == "" {
		return
	}
	if err := h.store.Remove(path); err != nil {
		logging.Warn("Managed copy not removed", "path", path, "error", err)
	}
}

// launch starts the installed copy, reporting failures to the user.
func (h *Handler) launch(execPath, name string) error {
	if err := h.desktop.Launch(execPath); err != nil {
		h.dialogs.ShowError("Launch Failed",
			fmt.Sprintf("Could not launch '%s'.\n\n"+
				"Please check that the AppImage file is valid and executable.", name))
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	return nil
}
