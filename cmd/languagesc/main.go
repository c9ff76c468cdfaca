// Command languagesc reads an EBNF grammar file and drives it through the
// parse -> check -> generate pipeline: the direct port of main.cpp's
// three-stage pipeline, restated as cobra subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yandroskaos/languages/codegen"
	"github.com/yandroskaos/languages/core"
	"github.com/yandroskaos/languages/ebnf"
	"github.com/yandroskaos/languages/semantics"
)

var log = logrus.New()

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "languagesc",
		Short: "Parser-combinator compiler-compiler for the EBNF dialect",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCommand(), newTreeCommand(), newCheckCommand(), newWatchCommand())
	return root
}

func newGenerateCommand() *cobra.Command {
	var outDir string
	var showPosition bool

	cmd := &cobra.Command{
		Use:   "generate <file.ebnf>",
		Short: "Parse, check, and generate a Go parser from a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args[0], outDir, showPosition)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: alongside the source file)")
	cmd.Flags().BoolVarP(&showPosition, "position", "p", false, "include node positions in the .st tree dump")
	return cmd
}

func newTreeCommand() *cobra.Command {
	var showPosition bool
	cmd := &cobra.Command{
		Use:   "tree <file.ebnf>",
		Short: "Parse a grammar file and pretty-print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, tree := ebnf.Parse(src)
			if !res.Matched {
				printParseFailure(res, src)
				return fmt.Errorf("parse failed")
			}
			printTree(tree, showPosition)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showPosition, "position", "p", false, "include node positions")
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.ebnf>",
		Short: "Parse and semantically check a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, tree := ebnf.Parse(src)
			if !res.Matched {
				printParseFailure(res, src)
				return fmt.Errorf("parse failed")
			}
			if errs := semantics.Check(tree); len(errs) > 0 {
				printSemanticFailure(errs)
				return fmt.Errorf("%d semantic error(s)", len(errs))
			}
			pterm.Success.Println("grammar is semantically clean")
			return nil
		},
	}
}

func newWatchCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "watch <file.ebnf>",
		Short: "Re-run generate every time the grammar file changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: alongside the source file)")
	return cmd
}

func runGenerate(path, outDir string, showPosition bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, tree := ebnf.Parse(src)
	if !res.Matched {
		printParseFailure(res, src)
		return fmt.Errorf("parse failed")
	}

	if errs := semantics.Check(tree); len(errs) > 0 {
		printSemanticFailure(errs)
		return fmt.Errorf("%d semantic error(s)", len(errs))
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	pkgName := strings.ToLower(tree.Data)

	code, err := codegen.Generate(tree, pkgName)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}

	outFile := filepath.Join(dir, pkgName+"_parser.go")
	if err := os.WriteFile(outFile, code, 0o644); err != nil {
		return err
	}
	log.WithField("file", outFile).Debug("wrote generated parser")

	stFile := filepath.Join(dir, pkgName+".st")
	if err := os.WriteFile(stFile, []byte(codegen.DumpTree(tree, showPosition)), 0o644); err != nil {
		return err
	}

	pterm.Success.Printfln("ST   generated => %s", stFile)
	pterm.Success.Printfln("CODE generated => %s", outFile)
	return nil
}

func runWatch(path, outDir string) error {
	if err := runGenerate(path, outDir, false); err != nil {
		log.WithError(err).Warn("initial generate failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log.WithField("file", path).Info("watching for changes")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Info("grammar changed, regenerating")
			if err := runGenerate(path, outDir, false); err != nil {
				log.WithError(err).Warn("generate failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

func printParseFailure(res core.Result, src []byte) {
	pterm.Error.Println("parse failure")
	pterm.Printfln("at %s", res.Fail.Where)
	for _, exp := range res.Fail.Expected {
		pterm.Printfln("\texpected: %s", exp)
	}
	_ = src
}

func printSemanticFailure(errs []error) {
	pterm.Error.Println("semantic check failed")
	for _, e := range errs {
		pterm.Printfln("\t%s", e.Error())
	}
}

func printTree(tree *core.STN, showPosition bool) {
	core.PreWalk(tree, func(n *core.STN, level int) bool {
		line := strings.Repeat("  ", level) + n.Data
		if showPosition {
			line += " " + n.Where.String()
		}
		pterm.Println(line)
		return true
	})
}
