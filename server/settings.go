package server

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/BrugadaSyndrome/FractalServer/checkerboard"
	"github.com/BrugadaSyndrome/FractalServer/mandelbrot"
	"github.com/BrugadaSyndrome/FractalServer/misc"
	"github.com/BrugadaSyndrome/FractalServer/task"
	"github.com/BrugadaSyndrome/bslogger"
)

const (
	DefaultServerAddress = ":8000"
	DefaultMaxPixels     = 4096 * 4096
)

type Settings struct {
	logger bslogger.Logger

	CheckerboardSettings checkerboard.Settings
	LogFile              string
	MandelbrotSettings   mandelbrot.Settings
	MaxPixels            int
	ServerAddress        string
	TaskGeneration       task.Generation
	Workers              int
}

// NewSettings reads a JSON settings file and verifies it. An empty file name yields the defaults.
func NewSettings(settingsFile string) (Settings, error) {
	s := Settings{
		logger: bslogger.NewLogger("ServerSettings", bslogger.Normal, nil),
	}
	if settingsFile != "" {
		fileBytes, err := misc.ReadFile(settingsFile)
		if err != nil {
			return s, err
		}
		if err := json.Unmarshal(fileBytes, &s); err != nil {
			return s, fmt.Errorf("settings file %s: %w", settingsFile, err)
		}
	}
	if err := s.Verify(); err != nil {
		return s, err
	}
	s.logger.Debug(s.String())
	return s, nil
}

func (s *Settings) String() string {
	output := "\nServer settings\n"
	output += fmt.Sprintf("Server Address: %s\n", s.ServerAddress)
	output += fmt.Sprintf("Log File: %s\n", s.LogFile)
	output += fmt.Sprintf("Max Pixels: %d\n", s.MaxPixels)
	output += fmt.Sprintf("Task Generation: %s\n", s.TaskGeneration)
	output += fmt.Sprintf("Workers: %d\n", s.Workers)
	output += fmt.Sprintf("Max Iterations: %d\n", s.MandelbrotSettings.MaxIterations)
	output += fmt.Sprintf("Escape Radius: %g\n", s.MandelbrotSettings.EscapeRadius)
	output += fmt.Sprintf("Palette Colors: %d\n", len(s.MandelbrotSettings.Palette))
	return output
}

func (s *Settings) Verify() error {
	if err := s.MandelbrotSettings.Verify(); err != nil {
		return fmt.Errorf("mandelbrot settings: %w", err)
	}
	if err := s.CheckerboardSettings.Verify(); err != nil {
		return fmt.Errorf("checkerboard settings: %w", err)
	}
	// LogFile defaults to no log file
	if s.MaxPixels <= 0 {
		s.MaxPixels = DefaultMaxPixels
	}
	if s.ServerAddress == "" {
		s.ServerAddress = DefaultServerAddress
	}
	if s.TaskGeneration < task.Row || s.TaskGeneration > task.Grid {
		s.TaskGeneration = task.Row
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	return nil
}

// OpenLogFile opens the configured log file for appending. It returns nil when no log file is set.
func (s *Settings) OpenLogFile() (*os.File, error) {
	if s.LogFile == "" {
		return nil, nil
	}
	file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", s.LogFile, err)
	}
	return file, nil
}
