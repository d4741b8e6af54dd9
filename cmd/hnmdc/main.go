// Command hnmdc compiles Hypernote Markdown documents to JSON.
//
// Usage:
//
//	hnmdc [-strict] [-out dir] file.hnmd...
//	hnmdc -watch dir
//	hnmdc -serve :8080
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/hypernote/go-hypernote"
	"github.com/hypernote/go-hypernote/hnmd"
)

func main() {
	var (
		strict = flag.Bool("strict", false, "enable strict structural validation")
		outDir = flag.String("out", "", "directory for compiled .json output (default: next to input)")
		watch  = flag.String("watch", "", "watch a directory and recompile on change")
		serve  = flag.String("serve", "", "serve the compile API on this address")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	switch {
	case *serve != "":
		h := &hypernote.Handler{Strict: *strict, Logger: logger}
		logger.Info("serving compile API", "addr", *serve)
		if err := http.ListenAndServe(*serve, h); err != nil {
			logger.Error("serve", "err", err)
			os.Exit(1)
		}

	case *watch != "":
		compile := func(path string) {
			if err := compileFile(path, *outDir, *strict); err != nil {
				logger.Error("compile", "path", path, "err", err)
				return
			}
			logger.Info("compiled", "path", path)
		}
		w, err := hypernote.NewWatcher([]string{*watch}, compile)
		if err != nil {
			logger.Error("watch", "err", err)
			os.Exit(1)
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		logger.Info("watching", "dir", *watch)
		w.Run(ctx)

	default:
		if flag.NArg() == 0 {
			flag.Usage()
			os.Exit(2)
		}
		failed := false
		for _, path := range flag.Args() {
			if err := compileFile(path, *outDir, *strict); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	}
}

func compileFile(path, outDir string, strict bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := hnmd.Compile(string(src), hnmd.WithStrict(strict))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}
	return os.WriteFile(out, append(data, '\n'), 0o644)
}
