package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"bingers/internal/util"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const scheduleTagText = "[SCHEDULE]"

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Run executes job once when spec is empty. Otherwise it runs job
// immediately and then on every tick of the cron spec until ctx is done.
// Ticks that fire while a run is still going are skipped.
func Run(ctx context.Context, spec string, job Job, out io.Writer, logger zerolog.Logger) error {
	tag := util.YellowBold(scheduleTagText)

	if spec == "" {
		return job(ctx)
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec '%s': %w", spec, err)
	}

	fmt.Fprintln(out, util.BlueBold("--- Scheduler Mode ---"))
	fmt.Fprintf(out, "%s Cron Spec: %s.\n", tag, util.Yellow(spec))
	fmt.Fprintf(out, "%s Performing initial check...\n", tag)
	if err := job(ctx); err != nil {
		fmt.Fprintf(out, "%s Initial check completed with %s: %v\n", tag, util.Yellow("issues"), err)
	}
	if ctx.Err() != nil {
		return nil
	}

	clog := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.SkipIfStillRunning(clog)))
	_, err := c.AddFunc(spec, func() {
		start := time.Now()
		err := job(ctx)
		details := util.Gray(fmt.Sprintf("(%s, took %s)", util.FormatRunTime(start), time.Since(start).Round(time.Millisecond)))
		if err != nil {
			fmt.Fprintf(out, "%s Scheduled run completed with %s %s: %v\n", tag, util.Yellow("issues"), details, err)
			return
		}
		fmt.Fprintf(out, "%s Scheduled run finished. %s\n", tag, details)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	fmt.Fprintf(out, "%s Scheduler active. Waiting for next run...\n", tag)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Debug().Msg("scheduler stopped")
	return nil
}
