// Package cli wires the docpatch command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/typelate/docpatch/internal/diffview"
	"github.com/typelate/docpatch/internal/patch"
	"github.com/typelate/docpatch/internal/ruleset"
)

// Commands runs docpatch with the given arguments (excluding the program
// name). Relative paths resolve against wd, or against the directory passed
// with the global -C flag.
func Commands(wd string, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	workDir, rest, err := global(wd, args, stderr)
	if err != nil {
		return err
	}
	root := &cobra.Command{
		Use:           "docpatch",
		Short:         "Insert fixed text blocks into markdown documents at anchor points",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(rest)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(
		newApplyCommand(workDir, getenv, stdout, stderr),
		newCheckCommand(workDir, stdout),
		newRulesCommand(workDir, stdout),
		newPreviewCommand(workDir, stdout),
		newVersionCommand(stdout),
	)
	return root.Execute()
}

// ruleSource is the --rules/--preset flag pair shared by the commands that
// need a rule set.
type ruleSource struct {
	rulesFile string
	preset    string
}

func (src *ruleSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&src.rulesFile, "rules", "", "path to a YAML rule file")
	cmd.Flags().StringVar(&src.preset, "preset", "", "built-in rule set ("+strings.Join(ruleset.Presets(), ", ")+")")
}

func (src *ruleSource) load(workDir string) (*ruleset.File, error) {
	switch {
	case src.rulesFile != "" && src.preset != "":
		return nil, fmt.Errorf("--rules and --preset are mutually exclusive")
	case src.preset != "":
		return ruleset.Preset(src.preset)
	case src.rulesFile != "":
		return ruleset.Load(resolvePath(workDir, src.rulesFile))
	default:
		return nil, fmt.Errorf("either --rules or --preset is required")
	}
}

// targetsFor falls back to the rule file's own target when no documents are
// named on the command line.
func targetsFor(file *ruleset.File, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if file.Target != "" {
		return []string{file.Target}, nil
	}
	return nil, fmt.Errorf("no target: pass one or more files or use a rule file with a target field")
}

func newApplyCommand(workDir string, getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	var (
		src      ruleSource
		strict   bool
		dryRun   bool
		showDiff bool
	)
	cmd := &cobra.Command{
		Use:   "apply [target.md ...]",
		Short: "Apply a rule set to documents, rewriting them in place",
		Long: `Apply reads each target document, inserts every rule's block at its anchor,
and overwrites the target with the result. A rule whose anchor has no match is
skipped with a notice unless --strict is set. Re-applying a rule set is not
idempotent: anchors that still match receive the insertion again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := src.load(workDir)
			if err != nil {
				return err
			}
			targets, err := targetsFor(file, args)
			if err != nil {
				return err
			}
			rules := file.PatchRules()
			for _, target := range targets {
				resolved := resolvePath(workDir, target)
				buf, err := os.ReadFile(resolved)
				if err != nil {
					return err
				}
				doc := string(buf)
				patched, outcomes, err := patch.Apply(doc, rules, patch.Options{Strict: strict})
				if err != nil {
					return fmt.Errorf("%s: %w", target, err)
				}
				applied := 0
				for _, o := range outcomes {
					if o.Applied {
						applied++
						continue
					}
					fmt.Fprintf(stderr, "docpatch: %s: skip rule %q: anchor not found\n", target, o.Rule)
				}
				if showDiff {
					fmt.Fprint(stdout, diffview.Render(target, doc, patched, colorEnabled(stdout, getenv)))
				}
				if dryRun {
					fmt.Fprintf(stdout, "dry run: left %s unchanged (%d of %d rules match)\n", target, applied, len(rules))
					continue
				}
				if err := os.WriteFile(resolved, []byte(patched), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "patched %s (%d of %d rules applied)\n", target, applied, len(rules))
			}
			return nil
		},
	}
	src.addFlags(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first rule whose anchor has no match")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a diff of each document before rewriting it")
	return cmd
}

func newCheckCommand(workDir string, stdout io.Writer) *cobra.Command {
	var src ruleSource
	cmd := &cobra.Command{
		Use:   "check [target.md ...]",
		Short: "Verify that every rule's anchor matches, without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := src.load(workDir)
			if err != nil {
				return err
			}
			targets, err := targetsFor(file, args)
			if err != nil {
				return err
			}
			rules := file.PatchRules()
			missing := 0
			for _, target := range targets {
				buf, err := os.ReadFile(resolvePath(workDir, target))
				if err != nil {
					return err
				}
				_, outcomes, err := patch.Apply(string(buf), rules, patch.Options{})
				if err != nil {
					return fmt.Errorf("%s: %w", target, err)
				}
				for _, o := range outcomes {
					if !o.Applied {
						fmt.Fprintf(stdout, "%s: missing anchor for rule %q\n", target, o.Rule)
						missing++
					}
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d rule anchor(s) not found", missing)
			}
			fmt.Fprintf(stdout, "all %d rule anchor(s) found\n", len(rules)*len(targets))
			return nil
		},
	}
	src.addFlags(cmd)
	return cmd
}

func newRulesCommand(workDir string, stdout io.Writer) *cobra.Command {
	var src ruleSource
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules in a rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := src.load(workDir)
			if err != nil {
				return err
			}
			if file.Target != "" {
				fmt.Fprintf(stdout, "target: %s\n", file.Target)
			}
			for _, r := range file.Rules {
				where := r.Where
				if where == "" {
					where = string(patch.After)
				}
				locator := fmt.Sprintf("anchor %s", firstLine(r.Anchor))
				if r.Pattern != "" {
					locator = fmt.Sprintf("pattern %s", firstLine(r.Pattern))
				}
				fmt.Fprintf(stdout, "%s\t%s %s\n", r.Name, where, locator)
			}
			return nil
		},
	}
	src.addFlags(cmd)
	return cmd
}

func firstLine(s string) string {
	line, _, multi := strings.Cut(s, "\n")
	if multi {
		return fmt.Sprintf("%q...", line)
	}
	return fmt.Sprintf("%q", line)
}

func colorEnabled(stdout io.Writer, getenv func(string) string) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
