package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/healthloom-cli/internal/variable"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	varRegistry string
	varCategory string
	varUnit     string
	varDesc     string
	varMin      float64
	varMax      float64
	varInactive bool
	varCategFlt string
)

var variablesCmd = &cobra.Command{
	Use:     "variables",
	Aliases: []string{"vars"},
	Short:   "Manage the registry of tracked variables",
}

var variablesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a variable (name must match a column in your logs)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, path, err := loadRegistry(varRegistry)
		if err != nil {
			return err
		}
		v := variable.Variable{
			Name:        strings.TrimSpace(args[0]),
			Category:    variable.Lifestyle,
			Unit:        varUnit,
			Description: varDesc,
			Active:      !varInactive,
		}
		if varCategory != "" {
			c, err := variable.ParseCategory(varCategory)
			if err != nil {
				return err
			}
			v.Category = c
		}
		f := cmd.Flags()
		if f.Changed("min") || f.Changed("max") {
			v.NormalRange = &variable.Range{Min: varMin, Max: varMax}
		}
		if err := reg.Add(v); err != nil {
			return err
		}
		if err := reg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added variable '%s' (%s)\n", v.Name, v.Category)
		if v.NormalRange != nil && v.NormalRange.Min > v.NormalRange.Max {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: normal range min %g is above max %g\n", v.NormalRange.Min, v.NormalRange.Max)
		}
		return nil
	},
}

var variablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variables in registry order",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadRegistry(varRegistry)
		if err != nil {
			return err
		}
		var filter variable.Category
		if varCategFlt != "" {
			c, err := variable.ParseCategory(varCategFlt)
			if err != nil {
				return err
			}
			filter = c
		}
		out := cmd.OutOrStdout()
		if reg.Len() == 0 {
			fmt.Fprintln(out, "(no variables)")
			return nil
		}
		for _, v := range reg.Variables() {
			if filter != "" && v.Category != filter {
				continue
			}
			state := "inactive"
			if v.Active {
				state = "active"
			}
			line := fmt.Sprintf("- %s [%s] %s", v.Name, v.Category, state)
			if v.Unit != "" {
				line += fmt.Sprintf(", unit %s", v.Unit)
			}
			if v.NormalRange != nil {
				line += fmt.Sprintf(", normal %g..%g", v.NormalRange.Min, v.NormalRange.Max)
			}
			if v.Description != "" {
				line += fmt.Sprintf(" (%s)", v.Description)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, path, err := loadRegistry(varRegistry)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := reg.SetActive(name, active); err != nil {
					return err
				}
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", cases.Title(language.English).String(use)+"d", strings.Join(args, ", "))
			return nil
		},
	}
}

var variablesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a variable from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, path, err := loadRegistry(varRegistry)
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0]); err != nil {
			return err
		}
		if err := reg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed variable '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(variablesCmd)
	variablesCmd.PersistentFlags().StringVar(&varRegistry, "registry", "", "variable registry file (default from config)")

	variablesCmd.AddCommand(variablesAddCmd)
	variablesAddCmd.Flags().StringVarP(&varCategory, "category", "c", "", "category: blood|diet|supplement|lifestyle|sleep|exercise (default lifestyle)")
	variablesAddCmd.Flags().StringVarP(&varUnit, "unit", "u", "", "unit of measure")
	variablesAddCmd.Flags().StringVarP(&varDesc, "desc", "d", "", "description")
	variablesAddCmd.Flags().Float64Var(&varMin, "min", 0, "normal range lower bound")
	variablesAddCmd.Flags().Float64Var(&varMax, "max", 0, "normal range upper bound")
	variablesAddCmd.Flags().BoolVar(&varInactive, "inactive", false, "add without including it in analysis")

	variablesCmd.AddCommand(variablesListCmd)
	variablesListCmd.Flags().StringVarP(&varCategFlt, "category", "c", "", "only list this category")

	variablesCmd.AddCommand(setActiveCmd("activate", "Include variables in analysis", true))
	variablesCmd.AddCommand(setActiveCmd("deactivate", "Exclude variables from analysis", false))
	variablesCmd.AddCommand(variablesRemoveCmd)
}
