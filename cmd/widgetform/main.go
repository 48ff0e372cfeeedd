package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	widgetform "github.com/goliatone/go-widgetform"
	"github.com/goliatone/go-widgetform/pkg/announce"
	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/logging"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/prompt"
	"github.com/goliatone/go-widgetform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-widgetform/pkg/save"
)

func main() {
	configDir := flag.String("config", "widgets", "directory of widget configuration files")
	widgetType := flag.String("widget", "", "widget type to edit (lists types when empty)")
	templatesDir := flag.String("templates", "", "directory of .tpl files overriding the bundled templates")
	themeName := flag.String("theme", "", "theme name (default theme when empty)")
	variant := flag.String("variant", "", "theme variant")
	instancePath := flag.String("instance", "", "JSON file with the initial instance")
	output := flag.String("output", "", "write the rendered form markup to this file")
	endpoint := flag.String("save", "", "REST endpoint receiving the edited instance")
	token := flag.String("token", "", "bearer token sent with -save")
	interactive := flag.Bool("interactive", true, "prompt for every field")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFile := flag.String("log-json", "", "also write JSON logs to this file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLogs, err := newLogger(*level, *logFile)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	exits := &exitStack{exit: log.Fatalf}
	exits.push(stop)
	exits.push(closeLogs)
	fatalf := exits.fatalf

	opts := []widgetform.Option{
		widgetform.WithLogger(logger),
		widgetform.WithTheme(*themeName, *variant),
	}
	if *templatesDir != "" {
		engine, err := gotemplate.New(gotemplate.WithBaseDir(*templatesDir))
		if err != nil {
			fatalf("Failed to load templates: %v", err)
		}
		opts = append(opts, widgetform.WithTemplates(engine))
	}

	builder, err := widgetform.Load(os.DirFS(*configDir), opts...)
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}

	if *widgetType == "" {
		for _, t := range builder.Types() {
			fmt.Println(t)
		}
		return
	}

	initial, err := readInstance(*instancePath)
	if err != nil {
		fatalf("Failed to read instance: %v", err)
	}

	container := dom.NewDocument().CreateElement("div")
	f, err := builder.Build(*widgetType, form.Params{
		Model:     observable.New(initial),
		Container: container,
		Announcer: announce.NewLogger(logger),
	})
	if err != nil {
		fatalf("Failed to build form: %v", err)
	}
	defer f.Destruct()
	exits.push(f.Destruct)

	if err := f.Render(); err != nil {
		fatalf("Failed to render form: %v", err)
	}

	if *interactive {
		editor := prompt.New(prompt.WithLogger(logger))
		if _, err := editor.Edit(ctx, f); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(os.Stderr, "aborted")
				return
			}
			fatalf("Failed to edit form: %v", err)
		}
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(container.InnerHTML()), 0o644); err != nil {
			fatalf("Failed to write output: %v", err)
		}
		logger.Info("form markup written", "path", *output)
	}

	if *endpoint != "" {
		opts := []save.Option{save.WithLogger(logger)}
		if *token != "" {
			opts = append(opts, save.WithHeader("Authorization", "Bearer "+*token))
		}
		if _, err := save.New(*endpoint, opts...).Save(ctx, f); err != nil {
			f.Flush()
			for _, n := range f.Notifications().All() {
				fmt.Fprintln(os.Stderr, prompt.FormatNotification(n))
			}
			fatalf("Failed to save: %v", err)
		}
		logger.Info("instance saved", "endpoint", *endpoint)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.GetValue()); err != nil {
		fatalf("Failed to write instance: %v", err)
	}
}

// exitStack runs cleanups in reverse order before a fatal exit, which would
// otherwise skip deferred calls.
type exitStack struct {
	cleanups []func()
	exit     func(format string, args ...any)
}

func (s *exitStack) push(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

func (s *exitStack) fatalf(format string, args ...any) {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
	s.exit(format, args...)
}

func newLogger(rawLevel, jsonPath string) (*slog.Logger, func(), error) {
	lvl, err := logging.ParseLevel(rawLevel)
	if err != nil {
		return nil, nil, err
	}
	opts := logging.Options{Writer: os.Stderr, Level: lvl}
	closeFn := func() {}
	if jsonPath != "" {
		file, err := os.OpenFile(jsonPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		opts.JSONWriter = file
		closeFn = func() { _ = file.Close() }
	}
	logger, _ := logging.New(opts)
	return logger, closeFn, nil
}

func readInstance(path string) (instance.Instance, error) {
	if path == "" {
		return instance.Instance{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out instance.Instance
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
