package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/Shreyash39/LaserPointer/internal/config"
	"github.com/Shreyash39/LaserPointer/internal/demo"
	"github.com/Shreyash39/LaserPointer/internal/export"
	"github.com/Shreyash39/LaserPointer/internal/raster"
	"github.com/Shreyash39/LaserPointer/internal/render"
	"github.com/Shreyash39/LaserPointer/internal/state"
	"github.com/Shreyash39/LaserPointer/internal/ui"
)

func main() {
	configPath := flag.String("config", "laserpointer.toml", "path to the TOML config file")
	withDemo := flag.Bool("demo", false, "pre-draw the demo annotations")
	snapshot := flag.String("snapshot", "", "render the demo annotations to this PNG and exit")
	pdfPath := flag.String("pdf", "", "export the demo annotations to this PDF and exit")
	verbose := flag.Bool("verbose", false, "log renderer diagnostics")
	flag.Parse()

	if *verbose {
		gg.SetLogger(slog.Default())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *snapshot != "" || *pdfPath != "" {
		if err := runHeadless(cfg, *snapshot, *pdfPath); err != nil {
			log.Fatalf("Headless render failed: %v", err)
		}
		return
	}

	log.Println("Starting overlay")
	ui.RunApp(cfg, *configPath, *withDemo)
}

// runHeadless replays the demo gestures and writes the requested files.
func runHeadless(cfg config.Config, pngPath, pdfPath string) error {
	e := state.NewEngine(cfg.EngineOptions())
	defer e.Close()
	demo.Replay(e, demo.Gestures(cfg.WindowWidth, cfg.WindowHeight))

	if pngPath != "" {
		s := raster.New(int(cfg.WindowWidth), int(cfg.WindowHeight))
		defer s.Close()
		render.NewRenderer().Repaint(s, e.Snapshot())
		if err := s.SavePNG(pngPath); err != nil {
			return err
		}
		log.Printf("Wrote snapshot %s", pngPath)
	}

	if pdfPath != "" {
		if err := export.PDFFile(pdfPath, e.Permanent(), float64(cfg.WindowWidth), float64(cfg.WindowHeight)); err != nil {
			return err
		}
		log.Printf("Wrote PDF %s", pdfPath)
	}
	return nil
}
