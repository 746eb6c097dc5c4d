package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts  []model.AttemptRecord
	Summaries []Summary
	Profiles  store.Profiles
}

// BuildReport loads and prepares data for stats rendering. cfg.Learner is a
// learner id.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	profiles, err := st.Profiles(ctx, cfg.Learner)
	if err != nil {
		return Report{}, err
	}
	if cfg.Modality != "" {
		profiles = profiles.Only(cfg.Modality)
	}
	return Report{
		Attempts:  attempts,
		Summaries: Summarize(attempts),
		Profiles:  profiles,
	}, nil
}

// RenderProfiles prints the stored calibration state.
func RenderProfiles(w io.Writer, r Report) error {
	p := r.Profiles
	if p.Empty() {
		_, err := fmt.Fprintln(w, "No profiles found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Profiles"); err != nil {
		return err
	}
	headers := []string{"Modality", "Rating", "RD", "Attempts", "Current", "Best"}
	var rows [][]string
	names := make([]string, 0, len(p.Adaptive))
	for name := range p.Adaptive {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := p.Adaptive[name]
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.1f", a.Rating),
			fmt.Sprintf("%.1f", a.Deviation),
			fmt.Sprintf("%d", a.Attempts),
			FormatParams(a.CurrentParams),
			FormatParams(a.BestParams),
		})
	}
	if p.Span != nil {
		acc := "-"
		if len(p.Span.Rolling) > 0 {
			ok := 0
			for _, res := range p.Span.Rolling {
				if res.OK {
					ok++
				}
			}
			acc = fmt.Sprintf("%d/%d", ok, len(p.Span.Rolling))
		}
		rows = append(rows, []string{
			store.ModalitySpan,
			"-",
			"-",
			acc,
			fmt.Sprintf("stage=%d length=%d", p.Span.Stage, p.Span.Length),
			fmt.Sprintf("stage=%d length=%d", p.Span.BestStage, p.Span.BestLength),
		})
	}
	if p.Pool != nil {
		rows = append(rows, []string{
			store.ModalityPool,
			fmt.Sprintf("%.1f", p.Pool.Rating),
			fmt.Sprintf("%.1f", p.Pool.Deviation),
			"-",
			"-",
			"-",
		})
	}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// FormatParams renders params as sorted key=value pairs.
func FormatParams(p model.Params) string {
	if len(p) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}
