// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tachy/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates the attempts of one modality.
type Summary struct {
	Modality    string
	Attempts    int
	MeanScore   float64
	FirstRating float64
	LastRating  float64
	BestRating  float64
	Deviation   float64
}

// Change is the rating movement over the summarized attempts.
func (s Summary) Change() float64 {
	return s.LastRating - s.FirstRating
}

// Summarize groups attempts by modality. Attempts are expected oldest first;
// the result is sorted by modality name.
func Summarize(attempts []model.AttemptRecord) []Summary {
	byModality := map[string]*Summary{}
	var order []string
	for _, a := range attempts {
		s, ok := byModality[a.Modality]
		if !ok {
			s = &Summary{Modality: a.Modality, FirstRating: a.Rating, BestRating: a.Rating}
			byModality[a.Modality] = s
			order = append(order, a.Modality)
		}
		s.Attempts++
		s.MeanScore += a.Score
		s.LastRating = a.Rating
		s.Deviation = a.Deviation
		if a.Rating > s.BestRating {
			s.BestRating = a.Rating
		}
	}
	sort.Strings(order)
	out := make([]Summary, 0, len(order))
	for _, name := range order {
		s := byModality[name]
		s.MeanScore /= float64(s.Attempts)
		out = append(out, *s)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(top)))
		idx = max(0, min(idx, top))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints one row per modality.
func RenderSummary(w io.Writer, summaries []Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	headers := []string{"Modality", "Attempts", "Mean Score", "Rating", "Best", "Change", "RD"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Modality,
			fmt.Sprintf("%d", s.Attempts),
			fmt.Sprintf("%.2f", s.MeanScore),
			fmt.Sprintf("%.1f", s.LastRating),
			fmt.Sprintf("%.1f", s.BestRating),
			fmt.Sprintf("%+.1f", s.Change()),
			fmt.Sprintf("%.1f", s.Deviation),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true})
}

// RenderCurves prints rating and score sparklines per modality.
func RenderCurves(w io.Writer, attempts []model.AttemptRecord, window, width int, useColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	ratings := map[string][]float64{}
	scores := map[string][]float64{}
	for _, a := range attempts {
		ratings[a.Modality] = append(ratings[a.Modality], a.Rating)
		scores[a.Modality] = append(scores[a.Modality], a.Score)
	}
	names := make([]string, 0, len(ratings))
	for name := range ratings {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	width = CurveWidthFor(width)
	for i, name := range names {
		color := colorPalette[i%len(colorPalette)]
		rating := Downsample(ratings[name], width)
		score := Downsample(MovingAverage(scores[name], window), width)
		lines := []string{
			fmt.Sprintf("%s rating %s %.0f", name, paint(Sparkline(rating), color, useColor), rating[len(rating)-1]),
			fmt.Sprintf("%s score  %s %.2f", name, paint(Sparkline(score), color, useColor), score[len(score)-1]),
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
