package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"copydesk/internal/config"
	"copydesk/internal/logger"
	"copydesk/internal/store"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local title cache",
		Long:  `Inspect and clear the SQLite cache that fronts the topic title lists.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show title cache statistics",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached title lists",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheClear(); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}
}

func openCacheStore() (*store.Store, error) {
	dir := config.Get().Cache.Directory
	if dir == "" {
		dir = ".copydesk-cache"
	}
	return store.NewStore(dir)
}

func runCacheStats() error {
	cacheStore, err := openCacheStore()
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	stats, err := cacheStore.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache statistics: %w", err)
	}

	fmt.Println("Title cache")
	fmt.Println("===========")
	fmt.Printf("  categories:   %d\n", stats.CategoryCount)
	fmt.Printf("  size on disk: %d bytes\n", stats.CacheSize)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("  last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear() error {
	cacheStore, err := openCacheStore()
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	if err := cacheStore.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("Title cache cleared")
	return nil
}
