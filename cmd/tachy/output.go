package main

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tachy/internal/adaptive"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/stats"
)

func printRecord(w io.Writer, m adaptive.Modality, p model.AdaptiveProfile, d adaptive.Decision) error {
	lines := []string{
		fmt.Sprintf("%s: rating %.1f ± %.1f after %d attempts", m.Name, p.Rating, p.Deviation, p.Attempts),
		fmt.Sprintf("expected %.2f, scored %.2f, k %.1f", d.Expected, d.Score, d.K),
	}
	if d.HasAccuracy {
		lines = append(lines, fmt.Sprintf("rolling accuracy %.0f%%, fatigue bias %+d", d.Accuracy*100, p.FatigueBias))
	}
	if !d.Selected {
		lines = append(lines, "no candidate parameters; keeping the current ones")
	}
	lines = append(lines, fmt.Sprintf("next (target %.0f): %s", d.Target, stats.FormatParams(p.CurrentParams)))
	switch m.Name {
	case adaptive.NameReader:
		s := adaptive.ReaderSettingsFor(p.CurrentParams)
		lines = append(lines, fmt.Sprintf("settings: %d wpm, chunks of %d", s.WPM, s.Chunk))
	case adaptive.NameFixation:
		s := adaptive.FixationSettingsFor(p.CurrentParams)
		lines = append(lines, fmt.Sprintf("settings: hold %d ms, %dx%d grid", s.HoldMs, s.Cols, s.Rows))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
