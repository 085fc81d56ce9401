package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/cmd"
	"github.com/tzootz/midimix/mixer"
	"github.com/tzootz/midimix/version"
)

func main() {
	configPath := flag.String("c", "", "Mixer setup file (.yml or .json).")
	device := flag.String("d", "", "Open the first MIDI input whose name starts with this prefix.")
	first := flag.Bool("first", false, "Open the first available MIDI input.")
	list := flag.Bool("l", false, "List the available MIDI inputs and exit.")
	bpm := flag.Float64("bpm", 120, "Tempo for pulse decay, in beats per minute.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	cfg := midimix.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = midimix.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
			os.Exit(1)
		}
	}
	context := cmd.NewMIDIContext(cfg.FPS)
	defer context.Close()
	if *list {
		for _, name := range context.Devices() {
			fmt.Println(name)
		}
		return
	}
	if err := context.Open(*device, *first); err != nil {
		fmt.Fprintf(os.Stderr, "could not open MIDI input: %v\n", err)
		os.Exit(1)
	}
	monitor := mixer.NewMonitor(cfg, *bpm)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-interrupt:
			fmt.Println()
			return
		case <-ticker.C:
			monitor.Advance(context)
			// home the cursor and redraw the meter in place
			fmt.Print("\033[H\033[2J")
			fmt.Print(monitor.Meter())
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Midimix live monitor. Shows per-channel control strengths for a real-time MIDI input.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
