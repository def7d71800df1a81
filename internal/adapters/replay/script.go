// Package replay drives a monitoring run from a recorded script instead of
// a camera and live models. Each scripted frame carries the labels the
// classifier and detector would have produced, or the error they raised.
package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Script is a recorded capture.
type Script struct {
	// FrameInterval paces the source; zero delivers frames back to back.
	FrameInterval time.Duration `yaml:"frame_interval"`
	// Latency is added to every classify and detect call.
	Latency time.Duration `yaml:"latency"`
	// Loop restarts from the first frame instead of ending.
	Loop   bool          `yaml:"loop"`
	Frames []ScriptFrame `yaml:"frames"`
}

// ScriptFrame is one captured frame.
type ScriptFrame struct {
	Emotion     string   `yaml:"emotion"`
	Objects     []string `yaml:"objects"`
	EmotionErr  string   `yaml:"emotion_error"`
	DetectErr   string   `yaml:"detect_error"`
	SourceError string   `yaml:"source_error"`
	// Image is a file whose bytes become the frame data. Relative paths
	// resolve against the script's directory.
	Image string `yaml:"image"`

	data []byte
}

// Load reads a YAML script from path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay script: %w", err)
	}
	return parse(data, filepath.Dir(path))
}

// Parse decodes a YAML script. Image paths resolve against the working
// directory.
func Parse(data []byte) (*Script, error) {
	return parse(data, "")
}

func parse(data []byte, dir string) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse replay script: %w", err)
	}
	if len(s.Frames) == 0 {
		return nil, fmt.Errorf("replay script has no frames")
	}
	if s.FrameInterval < 0 || s.Latency < 0 {
		return nil, fmt.Errorf("replay script durations must not be negative")
	}
	for i := range s.Frames {
		if err := s.Frames[i].loadImage(dir); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return &s, nil
}

func (f *ScriptFrame) loadImage(dir string) error {
	if f.Image == "" {
		return nil
	}
	path := f.Image
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read frame image: %w", err)
	}
	f.data = data
	return nil
}

func (s *Script) frame(seq uint64) ScriptFrame {
	return s.Frames[seq%uint64(len(s.Frames))]
}
