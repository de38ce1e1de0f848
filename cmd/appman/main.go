// cmd/appman/main.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/linuxadmins/appman/pkg/appname"
	"github.com/linuxadmins/appman/pkg/assoc"
	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/desktop"
	"github.com/linuxadmins/appman/pkg/dialog"
	"github.com/linuxadmins/appman/pkg/installer"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	register := pflag.Bool("register", false, "Register the .AppImage file association.")
	unregister := pflag.Bool("unregister", false, "Unregister the .AppImage file association.")
	manage := pflag.Bool("manage", false, "List installed AppImages.")
	uninstallName := pflag.String("uninstall", "", "Uninstall an installed AppImage by name.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit (combine with -v for build details).")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	if *versionFlag {
		if verbosity > 0 {
			version.PrintFull()
		} else {
			version.Print()
		}
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Verbosity overrides the configured log level: 0 => configured,
	// 1 => INFO, 2+ => DEBUG.
	switch {
	case verbosity >= 2:
		cfg.LogLevel = "DEBUG"
	case verbosity == 1:
		cfg.LogLevel = "INFO"
	}

	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logging.Close()

	if *showConfig {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to serialize configuration: %v\n", err)
			return 1
		}
		fmt.Print(string(data))
		return 0
	}

	switch {
	case *register:
		return handleRegister(cfg)
	case *unregister:
		return handleUnregister(cfg)
	case *manage:
		return handleManage(cfg)
	case *uninstallName != "":
		return handleUninstall(cfg, *uninstallName)
	}

	if pflag.NArg() != 1 {
		pflag.Usage()
		return 1
	}
	return handlePackageFile(cfg, pflag.Arg(0))
}

// handlePackageFile runs the install workflow for one opened package.
func handlePackageFile(cfg *config.Configuration, path string) int {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file '%s' not found.\n", path)
		return 1
	}

	handler := installer.NewHandler(cfg, desktop.New(cfg), dialog.Detect())
	state, err := handler.Handle(path)
	if err != nil {
		logging.Error("Package handling failed", "path", path, "state", string(state), "error", err)
		return 1
	}
	logging.Info("Package handled", "path", path, "state", string(state))
	return 0
}

func handleRegister(cfg *config.Configuration) int {
	a := assoc.New(cfg, "")
	if err := a.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register .AppImage file associations: %v\n", err)
		return 1
	}
	fmt.Println("Successfully registered .AppImage file associations.")
	fmt.Println("You can now double-click AppImage files to install them.")
	return 0
}

func handleUnregister(cfg *config.Configuration) int {
	a := assoc.New(cfg, "")
	if err := a.Unregister(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unregister .AppImage file associations: %v\n", err)
		return 1
	}
	fmt.Println("Successfully unregistered .AppImage file associations.")
	return 0
}

// handleManage prints the installed packages tracked in the registry.
func handleManage(cfg *config.Configuration) int {
	handler := installer.NewHandler(cfg, desktop.New(cfg), dialog.Detect())
	records := handler.Registry().List()
	if len(records) == 0 {
		fmt.Println("No AppImages installed.")
		return 0
	}

	fmt.Printf("%-30s %-15s %-25s %s\n", "NAME", "VERSION", "INSTALLED", "PATH")
	for _, rec := range records {
		fmt.Printf("%-30s %-15s %-25s %s\n", rec.Name, rec.Version, rec.InstalledAt, rec.ManagedExecPath)
	}
	return 0
}

// handleUninstall removes one installed package by display name.
func handleUninstall(cfg *config.Configuration, name string) int {
	handler := installer.NewHandler(cfg, desktop.New(cfg), dialog.Detect())

	for _, rec := range handler.Registry().List() {
		if appname.Same(rec.Name, name) {
			state, err := handler.Uninstall(rec)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to uninstall '%s': %v\n", rec.Name, err)
				return 1
			}
			if state == installer.StateCancelled {
				fmt.Printf("Uninstall of '%s' cancelled.\n", rec.Name)
				return 0
			}
			fmt.Printf("Uninstalled '%s'.\n", rec.Name)
			return 0
		}
	}
	fmt.Fprintf(os.Stderr, "No installed AppImage matches '%s'.\n", name)
	return 1
}
