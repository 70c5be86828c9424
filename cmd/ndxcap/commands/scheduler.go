package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ndxcap/internal/scheduler"
	"github.com/wonny/ndxcap/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run dataset refreshes on a cron schedule",
	Long: `Starts a long-running scheduler that refreshes the dataset on
weekday evenings after US market close.

Registered jobs:
- dataset_refresh: weekdays at 17:30

On shutdown a summary of job runs is printed. The scheduler can be
stopped with Ctrl+C.

Example:
  ndxcap scheduler
  ndxcap scheduler --run-now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "run the refresh job immediately on start")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	sched := scheduler.New(d.log)
	job := jobs.NewRefreshJob(d.runner, d.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}

	sched.Start()
	fmt.Println("Scheduler started. Press Ctrl+C to stop.")

	if schedulerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("run refresh job: %w", err)
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sched.Stop()
	printJobSummary(sched)
	return nil
}

// printJobSummary reports each job's recent runs and success rate
func printJobSummary(sched *scheduler.Scheduler) {
	for _, name := range sched.GetAllJobs() {
		history, err := sched.GetJobHistory(name)
		if err != nil {
			continue
		}

		results := history.GetLatestResults(5)
		fmt.Printf("\nJob %s: %d run(s), success rate %.0f%%\n",
			name, len(history.Results), history.GetSuccessRate()*100)

		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = "failed: " + r.Error
			}
			fmt.Printf("  %s  %-10s %s\n",
				r.StartTime.Format("2006-01-02 15:04:05"),
				r.Duration.Round(time.Millisecond),
				status)
		}
	}
}
