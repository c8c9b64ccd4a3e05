package cli

import (
	"flag"
	"io"
	"path/filepath"
)

// global strips the -C flag before subcommand dispatch so every command
// resolves relative paths against the requested directory.
func global(wd string, args []string, stderr io.Writer) (string, []string, error) {
	var changeDir string
	flagSet := flag.NewFlagSet("docpatch global", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&changeDir, "C", "", "change root directory")
	if err := flagSet.Parse(args); err != nil {
		return "", nil, err
	}
	if filepath.IsAbs(changeDir) {
		return changeDir, flagSet.Args(), nil
	}
	cd, err := filepath.Abs(filepath.Join(wd, changeDir))
	if err != nil {
		return "", nil, err
	}
	return cd, flagSet.Args(), nil
}

func resolvePath(workDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workDir, p)
}
