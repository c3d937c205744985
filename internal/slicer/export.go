package slicer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/allinfinite/R2DJ/internal/dsp"
)

// Export writes every slice as a 16-bit mono WAV file into a timestamped
// session directory under dir and returns the session path. Nothing is
// written when the store is empty.
func Export(dir string, slices []*Slice) (string, error) {
	if len(slices) == 0 {
		return "", fmt.Errorf("no slices to export")
	}

	session := filepath.Join(dir, time.Now().Format("session-20060102-150405"))
	if err := os.MkdirAll(session, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	for i, s := range slices {
		name := fmt.Sprintf("%03d-%s-%s.wav", i, s.Category, s.ID)
		if err := writeSliceWAV(filepath.Join(session, name), s); err != nil {
			return "", err
		}
	}
	return session, nil
}

func writeSliceWAV(path string, s *Slice) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()

	pcm := dsp.ToInt16(s.Samples)
	data := make([]int, len(pcm))
	for i, v := range pcm {
		data[i] = int(v)
	}

	enc := wav.NewEncoder(fh, s.SampleRate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: s.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
