package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/genify/internal/formatter"
	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
	"github.com/urfave/cli/v3"
)

const maxSuggestions = 100

// Analyze suggests tracks for one or more playlists.
//
// A single playlist is analyzed directly; several are handed to [tasks.PlaylistEngine.AnalyzeMany] and reported
// together.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return fmt.Errorf("%w: at least one playlist URL, URI or ID", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts, err := r.analyzeOpts(cmd)
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	top := cmd.Int("top")
	progress, wait := r.progress(format == formatter.FormatText || output != "")

	if len(inputs) == 1 {
		res, err := engine.Analyze(ctx, inputs[0], opts, progress)
		wait()
		if err != nil {
			return err
		}
		return r.emit(formatter.NewReport(res, top), format, output)
	}

	res, err := engine.AnalyzeMany(ctx, inputs, tasks.BatchOpts{
		Analyze:    opts,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate-limit"),
	}, progress)
	wait()
	if res == nil {
		return err
	}

	report := formatter.NewBatchReport(res, top)
	if output != "" {
		if werr := formatter.WriteBatchReport(report, format, output); werr != nil {
			return werr
		}
		r.writePlain("✓ Report for %d playlists saved to %s\n", len(inputs), output)
	} else {
		data, rerr := formatter.RenderBatch(report, format)
		if rerr != nil {
			return rerr
		}
		if werr := r.writeBytes(data); werr != nil {
			return werr
		}
	}

	if err != nil {
		return err
	}
	if res.Succeeded == 0 {
		return fmt.Errorf("all %d playlists failed: %w", len(inputs), res.Items[0].Err)
	}
	return nil
}

// Tally counts tracks per contributor without requesting recommendations.
func (r *Runner) Tally(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("playlist")
	if input == "" {
		return fmt.Errorf("%w: playlist URL, URI or ID", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	progress, wait := r.progress(format == formatter.FormatText || output != "")
	res, err := engine.Tally(ctx, input, progress)
	wait()
	if err != nil {
		return err
	}
	return r.emit(formatter.NewTallyReport(res), format, output)
}

// analyzeOpts starts from the config file and applies --weights, --suggestions and --market.
func (r *Runner) analyzeOpts(cmd *cli.Command) (tasks.AnalyzeOpts, error) {
	opts, err := tasks.OptsFromConfig(r.config)
	if err != nil {
		return opts, err
	}

	if w := cmd.String("weights"); w != "" {
		weights, err := models.ParseWeights(w)
		if err != nil {
			return opts, err
		}
		opts.Weights = weights
	}

	if n := cmd.Int("suggestions"); n != 0 {
		if n < 1 || n > maxSuggestions {
			return opts, fmt.Errorf("%w: --suggestions must be between 1 and %d", shared.ErrInvalidArgument, maxSuggestions)
		}
		opts.Suggestions = n
	}

	if m := cmd.String("market"); m != "" {
		opts.Market = strings.ToUpper(m)
	}
	return opts, nil
}

func (r *Runner) emit(report *formatter.Report, format formatter.Format, output string) error {
	if output != "" {
		if err := formatter.WriteReport(report, format, output); err != nil {
			return err
		}
		return r.writePlain("✓ Report saved to %s\n", output)
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// progress prints engine updates while show is set. The returned func must be called once the engine
// call returns; it closes the channel and waits for the printer to drain.
func (r *Runner) progress(show bool) (chan tasks.ProgressUpdate, func()) {
	if !show {
		return nil, func() {}
	}

	ch := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range ch {
			r.logger.Debug("progress", "phase", u.Phase, "step", u.Step, "total", u.Total)
			r.writePlain("%s %s\n", phaseIcon(u.Phase), u.Message)
		}
	}()

	return ch, func() {
		close(ch)
		<-done
	}
}

func phaseIcon(p tasks.Phase) string {
	switch p {
	case tasks.FetchPlaylist, tasks.FetchTracks, tasks.FetchFeatures:
		return "📥"
	case tasks.ScoreTracks:
		return "📊"
	case tasks.FetchRecommendations:
		return "🔍"
	case tasks.TallyContributors:
		return "👥"
	case tasks.RecordLookup:
		return "📝"
	default:
		return "•"
	}
}
