package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/export"
	"github.com/tzootz/midimix/mixer"
	"github.com/tzootz/midimix/rpc"
	"github.com/tzootz/midimix/version"
)

func main() {
	configPath := flag.String("c", "", "Mixer setup file (.yml or .json). By default, all four channels map tracks 1:1 in velocity mode.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	outPath := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original MIDI file is.")
	jsonOut := flag.Bool("j", false, "Output the curve as a .json file.")
	yamlOut := flag.Bool("y", false, "Output the curve as a .yml file.")
	csvOut := flag.Bool("csv", false, "Output the curve as a .csv file.")
	tmplName := flag.String("t", "", "Output text rendered from the named template. Available embedded templates: keyframes.txt.tmpl, schedule.txt.tmpl.")
	tmplDir := flag.String("tdir", "", "Use the *.tmpl templates in this directory instead of the embedded ones.")
	startFrame := flag.Int("start", 0, "First frame to render.")
	endFrame := flag.Int("end", midimix.MaxFrame, "Last frame to render (inclusive).")
	weighted := flag.Bool("weighted", false, "Apply the per-channel weights to the output values.")
	serve := flag.Bool("serve", false, "Do not write files; serve frame strengths over rpc instead. Only the first input file is used.")
	serveAddr := flag.String("addr", rpc.DefaultAddr, "Address to serve frame strengths on with -serve.")
	verbose := flag.Bool("verbose", false, "Log parsing and rendering details.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if !*jsonOut && !*yamlOut && !*csvOut && *tmplName == "" && !*serve {
		*csvOut = true // if the user gives nothing to output, default to csv
	}
	var logger *zap.Logger
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
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
	var templater *export.Templater
	if *tmplName != "" {
		var err error
		if *tmplDir != "" {
			templater, err = export.NewTemplaterFromDir(*tmplDir)
		} else {
			templater, err = export.NewTemplater()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating templater: %v\n", err)
			os.Exit(1)
		}
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		dir, name := filepath.Split(filename)
		if *outPath != "" {
			dir = *outPath
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		if dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		m := mixer.New(cfg, logger)
		if err := m.Load(filename); err != nil {
			return err
		}
		if *serve {
			l, err := rpc.Serve(*serveAddr, m)
			if err != nil {
				return fmt.Errorf("could not serve strengths: %v", err)
			}
			fmt.Fprintf(os.Stderr, "serving frame strengths on %v\n", l.Addr())
			select {} // serve until killed
		}
		curve, err := m.Render(context.Background(), *startFrame, *endFrame)
		if err != nil {
			return fmt.Errorf("rendering failed: %v", err)
		}
		if *weighted {
			m.ApplyWeights(curve)
		}
		if *jsonOut {
			data, err := export.JSON(curve)
			if err != nil {
				return err
			}
			if err := output(filename, ".json", data); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			data, err := export.YAML(curve)
			if err != nil {
				return err
			}
			if err := output(filename, ".yml", data); err != nil {
				return fmt.Errorf("error outputting yml file: %v", err)
			}
		}
		if *csvOut {
			data, err := export.CSV(curve)
			if err != nil {
				return err
			}
			if err := output(filename, ".csv", data); err != nil {
				return fmt.Errorf("error outputting csv file: %v", err)
			}
		}
		if templater != nil {
			data, err := templater.Render(*tmplName, curve)
			if err != nil {
				return err
			}
			if err := output(filename, ".txt", data); err != nil {
				return fmt.Errorf("error outputting template file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			midfiles, err := filepath.Glob(filepath.Join(param, "*.mid"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for mid files: %v\n", param, err)
				retval = 1
				continue
			}
			midifiles, err := filepath.Glob(filepath.Join(param, "*.midi"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for midi files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(midfiles, midifiles...)
			for _, file := range files {
				err := process(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			err := process(param)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Midimix renderer. Input .mid files, outputs per-frame control curves (.csv, .json, .yml or templated text).\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
