package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mirkobrombin/go-dislock/v1/lock"
	"github.com/mirkobrombin/go-dislock/v1/presets"
)

var (
	locker *lock.Locker

	ttl      time.Duration
	maxWait  time.Duration
	interval time.Duration

	rootCmd = &cobra.Command{
		Use:               "dislock",
		Short:             "Distributed lock on a shared Redis instance",
		PersistentPreRunE: setupLocker,
	}

	lockCmd = &cobra.Command{
		Use:   "lock [key]",
		Short: "Acquire a lock",
		Long:  "Acquire a lock and print the secret token required to unlock it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runLock,
	}

	unlockCmd = &cobra.Command{
		Use:   "unlock [key] [token]",
		Short: "Release a previously acquired lock",
		Long:  "Release a lock using the key and the token printed by the lock command.",
		Args:  cobra.ExactArgs(2),
		RunE:  runUnlock,
	}

	runCmd = &cobra.Command{
		Use:   "run [key] -- command [args...]",
		Short: "Run a command while holding a lock",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runScoped,
	}
)

func init() {
	// Flags can also come from DISLOCK_* env vars or a local .env file.
	_ = godotenv.Load()
	viper.SetEnvPrefix("DISLOCK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	for _, cmd := range []*cobra.Command{lockCmd, runCmd} {
		cmd.Flags().DurationVar(&ttl, "ttl", 30*time.Second, "lock TTL (auto-release after this)")
		cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "max time to wait for the lock (0 = don't wait)")
		cmd.Flags().DurationVar(&interval, "interval", lock.DefaultInterval, "poll interval while waiting")
	}

	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(runCmd)
}

func setupLocker(_ *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	locker = presets.NewRedis(presets.RedisOptions{
		Addr:     viper.GetString("redis-addr"),
		Password: viper.GetString("redis-password"),
		DB:       viper.GetInt("redis-db"),
	}, lock.WithLogger(logger))
	return nil
}

func lockOptions() []lock.LockOption {
	opts := []lock.LockOption{lock.WithTTL(ttl), lock.WithInterval(interval)}
	if maxWait > 0 {
		opts = append(opts, lock.WithBlock(true), lock.WithMaxWait(maxWait))
	} else {
		opts = append(opts, lock.WithBlock(false))
	}
	return opts
}

func runLock(cmd *cobra.Command, args []string) error {
	token, err := locker.Lock(cmd.Context(), args[0], lockOptions()...)
	if errors.Is(err, lock.ErrLockBusy) || errors.Is(err, lock.ErrAcquireTimeout) {
		fmt.Println("acquired=false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	fmt.Printf("acquired=true token=%s\n", token)
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	released, err := locker.Unlock(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	fmt.Printf("released=%v\n", released)
	return nil
}

func runScoped(cmd *cobra.Command, args []string) error {
	key := args[0]
	return locker.Do(cmd.Context(), key, func(ctx context.Context) error {
		c := exec.CommandContext(ctx, args[1], args[2:]...)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}, lockOptions()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
