// cmd/code-chunker/watch.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/code-chunker/internal/batch"
	"github.com/randalmurphal/code-chunker/internal/config"
	"github.com/randalmurphal/code-chunker/internal/sync"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch repositories and re-chunk on changes",
	Long: `Run a foreground daemon that re-chunks a repository whenever its
git HEAD moves. HEAD is polled every --interval and .git is watched
for ref updates in between.`,
	RunE: runWatch,
}

const watchIntervalFloor = time.Second

var (
	watchRepos    string
	watchInterval string
)

func init() {
	watchCmd.Flags().StringVar(&watchRepos, "repos", "", "Comma-separated repo names or paths to watch")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "60s", "Check interval (e.g., 30s, 5m)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchRepos == "" {
		return fmt.Errorf("--repos is required")
	}

	interval, err := parseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if interval < watchIntervalFloor {
		return fmt.Errorf("interval must be at least %s", watchIntervalFloor)
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	logger := e.logger

	var repos []sync.RepoWatch
	for _, arg := range strings.Split(watchRepos, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}

		repoPath, err := resolveRepoPath(arg)
		if err != nil {
			logger.Warn("repo path not found", "repo", arg, "error", err)
			continue
		}

		repoCfg, err := config.LoadRepoConfigOrDefault(repoPath)
		if err != nil {
			logger.Warn("invalid repo config, skipping", "repo", arg, "error", err)
			continue
		}

		repos = append(repos, sync.RepoWatch{
			Name:   repoCfg.Name,
			Path:   repoPath,
			Config: repoCfg,
		})
	}

	if len(repos) == 0 {
		return fmt.Errorf("no valid repos found")
	}

	runner := e.runner(batch.OptionsFromConfig(e.cfg))
	daemon := sync.NewDaemon(repos, interval, runner, logger)

	ctx, cancel := commandContext()
	defer cancel()

	if err := daemon.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
