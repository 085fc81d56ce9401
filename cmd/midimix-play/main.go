//go:build cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/mixer"
	"github.com/tzootz/midimix/oto"
	"github.com/tzootz/midimix/version"
)

func main() {
	configPath := flag.String("c", "", "Mixer setup file (.yml or .json).")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original MIDI file is.")
	play := flag.Bool("p", false, "Play the audition tones (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the audition audio as a .raw file (mono float32).")
	wavOut := flag.Bool("w", false, "Output the audition audio as a .wav file.")
	pcm := flag.Bool("i", false, "Convert audio to 16-bit signed PCM when outputting.")
	startFrame := flag.Int("start", 0, "First frame to render.")
	endFrame := flag.Int("end", midimix.MaxFrame, "Last frame to render (inclusive).")
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
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
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
	var audioContext midimix.AudioContext
	if *play {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			dir, name := filepath.Split(filename)
			if *directory != "" {
				dir = *directory
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
		m := mixer.New(cfg, nil)
		if err := m.Load(filename); err != nil {
			return err
		}
		curve, err := m.Render(context.Background(), *startFrame, *endFrame)
		if err != nil {
			return fmt.Errorf("rendering failed: %v", err)
		}
		m.ApplyWeights(curve)
		buffer := curve.Audition()
		if *rawOut {
			raw, err := midimix.Raw(buffer, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := midimix.Wav(buffer, 44100, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			sink := audioContext.Output()
			if err := sink.WriteAudio(buffer); err != nil {
				sink.Close()
				return fmt.Errorf("could not play audition: %v", err)
			}
			if err := sink.Close(); err != nil {
				return fmt.Errorf("could not close audio sink: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		err := process(param)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Midimix audition player. Renders .mid control curves as audible tones for checking sync by ear.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
