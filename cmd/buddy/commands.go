package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/api"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/storage"
	"github.com/bobby-s-dev/weather-buddy/internal/store"
)

const commandTimeout = 30 * time.Second

func withApp(cmd *cobra.Command, rt *cli, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

func forecastCommand(rt *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "forecast [city]",
		Short: "Show today's forecast for the selected city, or switch to another city first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				a.store.Init(ctx)

				if len(args) == 1 {
					city, err := a.openMeteo.FirstCity(ctx, args[0])
					if err != nil {
						return fmt.Errorf("failed to find %q: %w", args[0], err)
					}
					_ = a.store.SelectCity(ctx, city)
				}

				st := a.store.Snapshot()
				if st.Forecast == nil {
					if st.LastError != nil {
						return st.LastError
					}
					return fmt.Errorf("no forecast available")
				}

				view := api.NewTodayView(st)
				if output == "json" {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				printToday(cmd.OutOrStdout(), view, st)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func printToday(w io.Writer, v api.TodayView, st store.State) {
	fmt.Fprintf(w, "%s %s", v.CityEmoji, v.City.Name)
	if v.City.Admin1 != "" {
		fmt.Fprintf(w, ", %s", v.City.Admin1)
	}
	fmt.Fprintf(w, " (%s)\n", v.Status)
	fmt.Fprintf(w, "%s %s  %s  feels like %s\n", v.ThemeEmoji, v.Condition, v.Temperature, v.FeelsLike)
	fmt.Fprintf(w, "High %s  Low %s\n", v.High, v.Low)
	fmt.Fprintf(w, "Rain %s  Wind %s  UV %s  Snow %s\n", v.Rain, v.Wind, v.UV, v.Snowfall)
	fmt.Fprintf(w, "Wear: %s\n", v.DressTip.Text)
	if st.LastError != nil {
		fmt.Fprintf(w, "%s\n", st.LastError.Error())
	}
	for _, t := range st.Toasts {
		fmt.Fprintf(w, "%s %s\n", t.Title, t.Body)
	}
}

func searchCommand(rt *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search cities by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				results, err := a.searcher.Search(ctx, strings.Join(args, " "))
				if err != nil {
					return models.FriendlyErrorFrom(err)
				}
				if output == "json" {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cities found")
					return nil
				}
				for _, c := range results {
					printCity(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func favoritesCommand(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				prefs, err := a.repo.LoadPrefs(ctx)
				switch {
				case errors.Is(err, models.ErrStorageCorrupt):
					rt.logger.Warn("Ignoring unreadable preferences", zap.Error(err))
					prefs = nil
				case err != nil:
					return err
				}
				if prefs == nil {
					def := storage.DefaultPreferences()
					prefs = &def
				}
				for _, c := range prefs.Favorites {
					marker := " "
					if c.ID == prefs.SelectedCity.ID {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s ", marker)
					printCity(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <query>",
		Short: "Find a city and pin it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				a.store.Init(ctx)

				city, err := a.openMeteo.FirstCity(ctx, strings.Join(args, " "))
				if err != nil {
					return models.FriendlyErrorFrom(err)
				}
				_ = a.store.AddFavorite(ctx, city)

				for _, t := range a.store.DrainToasts() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Title, t.Body)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", a.store.Snapshot().Prefs.SelectedCity.Name)
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <city-id>",
		Short: "Unpin a city by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				a.store.Init(ctx)
				_ = a.store.RemoveFavorite(ctx, args[0])

				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", a.store.Snapshot().Prefs.SelectedCity.Name)
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}

func printCity(w io.Writer, c models.City) {
	name := c.Name
	if c.Admin1 != "" {
		name += ", " + c.Admin1
	}
	if c.Country != "" {
		name += ", " + c.Country
	}
	fmt.Fprintf(w, "%-40s %s\n", name, c.ID)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
