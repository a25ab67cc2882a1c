package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/calisthenics-backend/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	var exercisesPath, achievementsPath string

	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the exercise and achievement catalog",
		Long: "Validates the bundled catalog, or replacement files given with " +
			"--exercises and --achievements, and prints a summary.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(exercisesPath, achievementsPath)
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "catalog invalid: %v\n", err)
				return err
			}
			printSummary(cmd, cat)
			return nil
		},
	}
	check.Flags().StringVar(&exercisesPath, "exercises", "", "exercise JSON file (default: bundled)")
	check.Flags().StringVar(&achievementsPath, "achievements", "", "achievement YAML file (default: bundled)")

	c := &cobra.Command{Use: "catalog", Short: "Catalog tools"}
	c.AddCommand(check)
	return c
}

func loadCatalog(exercisesPath, achievementsPath string) (*catalog.Catalog, error) {
	if exercisesPath == "" && achievementsPath == "" {
		return catalog.Load()
	}
	if exercisesPath == "" || achievementsPath == "" {
		return nil, fmt.Errorf("--exercises and --achievements must be given together")
	}
	ex, err := os.ReadFile(exercisesPath)
	if err != nil {
		return nil, err
	}
	ach, err := os.ReadFile(achievementsPath)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(ex, ach)
}

func printSummary(cmd *cobra.Command, cat *catalog.Catalog) {
	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen).SprintFunc()
	head := color.New(color.Bold).SprintFunc()

	exercises := cat.Exercises()
	byCategory := map[string]int{}
	for _, e := range exercises {
		byCategory[string(e.Category)]++
	}
	fmt.Fprintf(out, "%s %d exercises, %d skills, %d achievements, %d chains\n",
		ok("catalog ok:"), len(exercises), len(cat.Skills()), len(cat.Achievements()), len(cat.Chains()))

	fmt.Fprintln(out, head("exercises by category"))
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-14s %3d\n", k, byCategory[k])
	}

	fmt.Fprintln(out, head("skills by branch"))
	branches := cat.BranchTotals()
	keys = keys[:0]
	for k := range branches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-14s %3d\n", k, branches[k])
	}
}
