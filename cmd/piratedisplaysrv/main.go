package main

import (
	"flag"
	"fmt"
	"github.com/jypelle/piratedisplay/internal/client"
	"github.com/jypelle/piratedisplay/internal/srv"
	"github.com/jypelle/piratedisplay/internal/srv/compositor"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/jypelle/piratedisplay/internal/srv/device"
	"github.com/jypelle/piratedisplay/internal/version"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
)

const configSuffix = "piratedisplay"

type subCommand struct {
	flagSet *flag.FlagSet
	args    string
	help    string
	nArg    int
}

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of piratedisplay config folder")

	subCommands := []*subCommand{
		{flag.NewFlagSet("run", flag.ExitOnError), "", "Run server", 0},
		{flag.NewFlagSet("version", flag.ExitOnError), "", "Show the version number", 0},
		{flag.NewFlagSet("draw-icon", flag.ExitOnError), "ICON", "Show an icon of the status bar", 1},
		{flag.NewFlagSet("clear-icon", flag.ExitOnError), "ICON", "Hide the icon category of ICON", 1},
		{flag.NewFlagSet("draw-image", flag.ExitOnError), "PATH", "Replace the background image", 1},
		{flag.NewFlagSet("icon-bar-color", flag.ExitOnError), "R G B A", "Change the status bar color", 4},
		{flag.NewFlagSet("backlight", flag.ExitOnError), "", "Switch the backlight on", 0},
	}

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nA status panel display server\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		for _, cmd := range subCommands {
			fmt.Printf("  %-16s%s\n", cmd.flagSet.Name(), cmd.help)
		}
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	for _, cmd := range subCommands {
		cmd := cmd
		cmd.flagSet.Usage = func() {
			fmt.Printf("\nUsage: %s %s %s\n", mainCommand, cmd.flagSet.Name(), cmd.args)
			fmt.Printf("\n%s\n", cmd.help)
		}
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var selected *subCommand
	for _, cmd := range subCommands {
		if cmd.flagSet.Name() == flag.Arg(0) {
			selected = cmd
		}
	}
	if selected == nil {
		fmt.Printf("\n%s is not a piratedisplay command\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
	selected.flagSet.Parse(flag.Args()[1:])
	if selected.flagSet.NArg() != selected.nArg {
		if selected.nArg == 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
		} else {
			fmt.Printf("\n\"%s %s\" requires %d argument(s)\n", mainCommand, flag.Arg(0), selected.nArg)
		}
		selected.flagSet.Usage()
		os.Exit(1)
	}
	args := selected.flagSet.Args()
	// endregion

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	if selected.flagSet.Name() == "version" {
		fmt.Printf("Version %s\n", version.AppVersion.String())
		return
	}

	serverConfig := config.NewServerConfig(*configDir, *debugMode, *simulationMode)

	if selected.flagSet.Name() == "run" {
		run(serverConfig)
		return
	}

	// Client commands
	displayClient := client.NewClient(serverConfig.ClientAddress(), serverConfig.Tls, serverConfig.ApiKey)
	switch selected.flagSet.Name() {
	case "draw-icon":
		err = displayClient.DrawIcon(args[0])
	case "clear-icon":
		err = displayClient.ClearIcon(args[0])
	case "draw-image":
		err = displayClient.DrawImage(args[0])
	case "icon-bar-color":
		var channels [4]int
		for i, arg := range args {
			channels[i], err = strconv.Atoi(arg)
			if err != nil {
				logrus.Fatalf("Invalid color channel %q", arg)
			}
		}
		err = displayClient.IconBarColor(channels[0], channels[1], channels[2], channels[3])
	case "backlight":
		err = displayClient.Backlight()
	}
	if err != nil {
		logrus.Fatalf("%s failed: %v", selected.flagSet.Name(), err)
	}
}

func run(serverConfig *config.ServerConfig) {
	geometry := compositor.PirateAudio
	backend, err := device.NewBackend(serverConfig, geometry.Width, geometry.Height)
	if err != nil {
		logrus.Fatalf("Unable to open %s display: %v", serverConfig.Backend, err)
	}

	// Create piratedisplay server
	serverApp, err := srv.NewServerApp(serverConfig, backend)
	if err != nil {
		backend.Close()
		logrus.Fatalf("Unable to create server: %v", err)
	}

	// Listen stop signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	// Start piratedisplay server
	if err := serverApp.Start(); err != nil {
		serverApp.Stop()
		logrus.Fatalf("Unable to start server: %v", err)
	}

	select {
	case sig := <-ch:
		logrus.Infof("Received signal: %v", sig)
		serverApp.Stop()
	case <-serverApp.Done():
		serverApp.Stop()
		if err := serverApp.Err(); err != nil {
			logrus.Fatalf("Server failure: %v", err)
		}
		logrus.Infof("Display closed")
	}
}
