package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/umactually/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the transcript cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired and unreadable transcript cache files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		removed, err := cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL).Purge()
		if err != nil {
			return fmt.Errorf("purge cache: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Removed %d cache files from %s\n", removed, cfg.Cache.Dir)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached transcript",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Cache.Enabled = true
		transcripts := newTranscriptCache(cfg.Cache)
		defer closeCache(transcripts)
		if err := transcripts.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		where := cfg.Cache.Dir
		if cfg.Cache.RedisAddr != "" {
			where = "redis " + cfg.Cache.RedisAddr
		}
		fmt.Fprintf(os.Stderr, "✓ Cleared transcript cache (%s)\n", where)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd, cacheClearCmd)
}
