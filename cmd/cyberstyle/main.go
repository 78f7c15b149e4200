package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/config"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/describe"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection/cvdetect"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/logger"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/ocr"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/pipeline"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/render"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/server"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/stylize"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("cyberstyle - cyber HUD photo filter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cyberstyle [options] <image>...       filter images, writing <name>_filtered.png")
	fmt.Println("  cyberstyle verify [options] <image>... filter images and OCR the labels back")
	fmt.Println("  cyberstyle mcp [options]              serve MCP over stdin/stdout")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config FILE    YAML configuration file")
	fmt.Println("  --face FILE      face picture for the identity card when none is detected")
	fmt.Println("  --offline        skip clothing descriptions and use the default labels")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OPENAI_API_KEY               key for clothing descriptions (.env is read too)")
	fmt.Println("  CYBERSTYLE_LOG_LEVEL=debug   Enable debug logging")
	fmt.Println("  CYBERSTYLE_FACE_CASCADE      Haar cascade XML for face detection")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("cyberstyle %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

type options struct {
	config  string
	face    string
	offline bool
}

func parseFlags(name string, args []string) (options, []string, error) {
	var o options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = usage
	fs.StringVar(&o.config, "config", "", "YAML configuration file")
	fs.StringVar(&o.face, "face", "", "face picture for the identity card")
	fs.BoolVar(&o.offline, "offline", false, "use the default labels")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

func run(ctx context.Context, args []string) int {
	cmd := "filter"
	if len(args) > 0 && (args[0] == "mcp" || args[0] == "verify") {
		cmd, args = args[0], args[1:]
	}

	opts, rest, err := parseFlags(cmd, args)
	if err != nil {
		return 2
	}
	if cmd != "mcp" && len(rest) == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cyberstyle: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "cyberstyle: invalid log level: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.Log()

	a, err := build(cfg, opts.offline)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "cyberstyle: %v\n", err)
		return 1
	}
	defer a.close()

	log.Debug("cyberstyle starting",
		zap.String("version", Version),
		zap.String("command", cmd),
		zap.Bool("describer", a.describer != nil),
		zap.Bool("detector", a.detector != nil))

	switch cmd {
	case "mcp":
		srv, err := server.New(server.Options{
			Pipeline: a.pipeline,
			Planner:  a.planner,
			Renderer: a.renderer,
			Faces:    a.faces,
			Detector: a.detector,
			OCR:      a.reader,
			Logger:   log.Named("mcp"),
			Version:  Version,
		})
		if err != nil {
			log.Error("server setup failed", zap.Error(err))
			return 1
		}
		if err := srv.Run(); err != nil {
			log.Error("server error", zap.Error(err))
			return 1
		}
		return 0
	case "verify":
		return verify(ctx, a, rest, pipeline.Options{FaceImagePath: opts.face})
	default:
		return filter(ctx, a, rest, pipeline.Options{FaceImagePath: opts.face})
	}
}

func filter(ctx context.Context, a *app, paths []string, opts pipeline.Options) int {
	code := 0
	for _, item := range a.pipeline.RunBatch(ctx, paths, opts) {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", item.Path, item.Err)
			code = 1
			continue
		}
		fmt.Printf("%s -> %s\n", item.Path, item.Result.OutputPath)
	}
	return code
}

func verify(ctx context.Context, a *app, paths []string, opts pipeline.Options) int {
	if err := a.reader.Available(); err != nil {
		fmt.Fprintf(os.Stderr, "cyberstyle: %v\n", err)
		return 1
	}

	code := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return 1
		}
		res, err := a.pipeline.Run(ctx, path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			code = 1
			continue
		}

		readings, err := server.VerifyResult(a.reader, res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			code = 1
			continue
		}

		fmt.Printf("%s -> %s\n", path, res.OutputPath)
		if len(readings) == 0 {
			fmt.Println("  no body labels")
		}
		for _, r := range readings {
			status := "ok"
			if !r.Match {
				status = "MISMATCH"
				code = 1
			}
			fmt.Printf("  %-6s %-8s read %q want %q (similarity %.2f)\n", r.Name, status, r.Text, r.Want, r.Similarity)
		}
	}
	return code
}

// app holds the long-lived collaborators built from the configuration.
type app struct {
	faces     *textfit.FaceCache
	renderer  *render.Renderer
	planner   *layout.Planner
	detector  detection.Detector
	describer describe.Describer
	reader    *ocr.Reader
	pipeline  *pipeline.Pipeline
	closers   []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func build(cfg *config.Config, offline bool) (*app, error) {
	log := logger.Log()
	a := &app{
		faces:   textfit.NewFaceCache(),
		planner: layout.NewPlanner(cfg.Layout),
		reader:  ocr.NewReader(cfg.OCR),
	}

	palette, err := cfg.Palette.Parse()
	if err != nil {
		return nil, err
	}
	a.renderer = render.New(a.faces, palette)

	store, err := imaging.NewStore(cfg.Output)
	if err != nil {
		return nil, err
	}

	if d, err := openDetector(cfg.Detector, log); err == nil {
		a.detector = d
		a.closers = append(a.closers, d.Close)
	} else {
		log.Warn("detection disabled", zap.Error(err))
	}

	if !offline && cfg.Describer.Enabled {
		d, err := describe.NewOpenAI(cfg.Describer)
		if errors.Is(err, describe.ErrNoAPIKey) {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY or run with --offline", err)
		}
		if err != nil {
			return nil, err
		}
		a.describer = d
	}

	a.pipeline, err = pipeline.New(pipeline.Deps{
		Detector:  a.detector,
		Describer: describe.NewFallback(a.describer, cfg.Describer.Timeout, log.Named("describe")),
		Stylizer:  stylize.New(cfg.Style),
		Renderer:  a.renderer,
		Planner:   a.planner,
		Store:     store,
		Card:      &cfg.Card,
		Frame:     &cfg.Frame,
		Logger:    log.Named("pipeline"),
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// openDetector loads the OpenCV detectors. A missing face cascade degrades
// to body detection only.
func openDetector(cfg cvdetect.Config, log *zap.Logger) (*cvdetect.Detector, error) {
	d, err := cvdetect.New(cfg)
	if err == nil || cfg.FaceCascade == "" {
		return d, err
	}
	log.Warn("face detection disabled", zap.String("cascade", cfg.FaceCascade), zap.Error(err))
	cfg.FaceCascade = ""
	return cvdetect.New(cfg)
}
