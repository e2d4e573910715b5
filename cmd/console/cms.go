package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"industry-console/internal/cms"
	"industry-console/internal/console"
)

var (
	dryRun   bool
	fromFile string
)

var cmsCmd = &cobra.Command{
	Use:   "cms",
	Short: "Edit the industry content document",
}

var cmsIndustriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "List the known industries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range cms.Industries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", k, cms.Lookup(k).Title)
		}
	},
}

var cmsShowCmd = &cobra.Command{
	Use:   "show [section]",
	Short: "Show a section of the document (default hero)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, done, err := openEditor(cmd, false)
		if err != nil {
			return err
		}
		defer done()
		if len(args) == 1 {
			if err := selectSection(s, args[0]); err != nil {
				return err
			}
		}
		s.Edit(func(e *cms.Editor) {
			fmt.Fprintln(cmd.OutOrStdout(), st.editor(e))
		})
		return nil
	},
}

var cmsAddCmd = &cobra.Command{
	Use:   "add <section>",
	Short: "Append an empty item to a list section and save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, args[0], func(e *cms.Editor) error {
			i := e.AddItem(args[0])
			fmt.Fprintf(cmd.ErrOrStderr(), "added %s #%d\n", args[0], i)
			return nil
		})
	},
}

var cmsRemoveCmd = &cobra.Command{
	Use:   "remove <section> <index>",
	Short: "Remove an item from a list section and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		return mutate(cmd, args[0], func(e *cms.Editor) error {
			if !e.RemoveItem(args[0], i) {
				return fmt.Errorf("%s has no item #%d", args[0], i)
			}
			return nil
		})
	},
}

var cmsSetCmd = &cobra.Command{
	Use:   "set <section> [index] <key> <value>",
	Short: "Set a field (hero takes no index) and save",
	Example: `  console cms set hero title "Fresh cuts, no waiting"
  console cms set services 0 price 45`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sec := args[0]
		if sec == cms.HeroSection {
			if len(args) != 3 {
				return errors.New("usage: set hero <key> <value>")
			}
			return mutate(cmd, sec, func(e *cms.Editor) error {
				if !e.SetHero(args[1], args[2]) {
					return fmt.Errorf("hero has no field %q", args[1])
				}
				return nil
			})
		}
		if len(args) != 4 {
			return fmt.Errorf("usage: set %s <index> <key> <value>", sec)
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		return mutate(cmd, sec, func(e *cms.Editor) error {
			if !e.SetField(sec, i, args[2], args[3]) {
				return fmt.Errorf("%s has no item #%d", sec, i)
			}
			return nil
		})
	},
}

var cmsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the document as loaded, or replace it with --file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, done, err := openEditor(cmd, fromFile == "")
		if err != nil {
			return err
		}
		defer done()
		if fromFile != "" {
			raw, err := os.ReadFile(fromFile)
			if err != nil {
				return err
			}
			doc, err := cms.Merge(cms.Defaults(s.Industry()), raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fromFile, err)
			}
			s.Edit(func(e *cms.Editor) { e.Replace(doc) })
		}
		return s.Save(ctxOf(cmd))
	},
}

func init() {
	for _, c := range []*cobra.Command{cmsAddCmd, cmsRemoveCmd, cmsSetCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without saving")
	}
	cmsSaveCmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document to save instead of the stored one")
	cmsCmd.AddCommand(cmsIndustriesCmd, cmsShowCmd, cmsAddCmd, cmsRemoveCmd, cmsSetCmd, cmsSaveCmd)
}

// openEditor loads the configured industry. With strict set, a failed load
// is an error: writing the defaults back would wipe the stored document.
func openEditor(cmd *cobra.Command, strict bool) (*console.EditorSession, func(), error) {
	b, done, err := dial()
	if err != nil {
		return nil, nil, err
	}
	s := console.NewEditorSession(b, cfg.Console.Industry, logger, printer(cmd.ErrOrStderr()))
	if !cms.Known(cfg.Console.Industry) {
		fmt.Fprintln(cmd.ErrOrStderr(), st.Muted.Render("unknown industry "+cfg.Console.Industry+", using "+cms.DefaultIndustry+" sections"))
	}
	if !s.Load(ctxOf(cmd)) && strict {
		done()
		return nil, nil, errors.New("could not load the current document")
	}
	return s, done, nil
}

func selectSection(s *console.EditorSession, sec string) error {
	var ok bool
	s.Edit(func(e *cms.Editor) { ok = e.Select(sec) })
	if !ok {
		return fmt.Errorf("section %q is not part of %s", sec, s.Industry())
	}
	return nil
}

// mutate loads, applies fn to section, prints the section and saves.
func mutate(cmd *cobra.Command, section string, fn func(e *cms.Editor) error) error {
	s, done, err := openEditor(cmd, true)
	if err != nil {
		return err
	}
	defer done()
	if err := selectSection(s, section); err != nil {
		return err
	}
	s.Edit(func(e *cms.Editor) { err = fn(e) })
	if err != nil {
		return err
	}
	s.Edit(func(e *cms.Editor) {
		fmt.Fprintln(cmd.OutOrStdout(), st.section(e))
	})
	if dryRun {
		return nil
	}
	return s.Save(ctxOf(cmd))
}
