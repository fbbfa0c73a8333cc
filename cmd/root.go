// Package cmd holds the roombook command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avstrong/roombook/internal/app"
	"github.com/avstrong/roombook/internal/config"
	"github.com/avstrong/roombook/internal/logger"
)

var envFile string

//nolint:exhaustruct,gochecknoglobals
var rootCmd = &cobra.Command{
	Use:           "roombook",
	Short:         "Room availability, pricing and booking service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

//nolint:exhaustruct,gochecknoglobals
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

//nolint:exhaustruct,gochecknoglobals
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print a room's month calendar and the stay quote",
	RunE:  runCalendar,
}

//nolint:gochecknoglobals
var calendarQuery app.CalendarQuery

//nolint:gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")

	calendarCmd.Flags().IntVar(&calendarQuery.RoomID, "room", 0, "room id")
	calendarCmd.Flags().StringVar(&calendarQuery.Month, "month", "", "month as YYYY-MM, current month by default")
	calendarCmd.Flags().StringVar(&calendarQuery.CheckIn, "check-in", "", "check-in date as YYYY-MM-DD")
	calendarCmd.Flags().StringVar(&calendarQuery.CheckOut, "check-out", "", "check-out date as YYYY-MM-DD")
	_ = calendarCmd.MarkFlagRequired("room")

	rootCmd.AddCommand(serveCmd, calendarCmd)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "roombook: %v\n", err)

		return err //nolint:wrapcheck
	}

	return nil
}

func load() (*config.Config, *logger.Logger, error) {
	conf, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	l, err := logger.New(logger.Config{Level: conf.LogLevel, File: conf.LogFile})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return conf, l, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	conf, l, err := load()
	if err != nil {
		return err
	}
	defer l.Close()

	if err = app.Run(l, conf); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		return err //nolint:wrapcheck
	}

	return nil
}

func runCalendar(c *cobra.Command, _ []string) error {
	conf, l, err := load()
	if err != nil {
		return err
	}
	defer l.Close()

	return app.PrintCalendar(c.Context(), c.OutOrStdout(), l, conf, calendarQuery) //nolint:wrapcheck
}
