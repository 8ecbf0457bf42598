package ui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/Shreyash39/LaserPointer/internal/config"
	"github.com/Shreyash39/LaserPointer/internal/demo"
	"github.com/Shreyash39/LaserPointer/internal/export"
	"github.com/Shreyash39/LaserPointer/internal/render"
	"github.com/Shreyash39/LaserPointer/internal/state"
)

// Shell wires the engine to the overlay and the toolbar.
type Shell struct {
	Engine  *state.Engine
	Overlay *Overlay

	toolbar *toolbar
	host    fyne.CanvasObject
	window  fyne.Window
}

// NewShell builds the presentation shell around a fresh engine. The engine
// timer posts its callbacks onto the Fyne event loop.
func NewShell(cfg config.Config, host fyne.CanvasObject) *Shell {
	opts := cfg.EngineOptions()
	opts.Scheduler = state.SystemScheduler{Post: fyne.Do}
	e := state.NewEngine(opts)

	s := &Shell{
		Engine:  e,
		Overlay: NewOverlay(e, render.NewRenderer()),
		toolbar: newToolbar(e, cfg.Colors()),
		host:    host,
	}
	s.toolbar.OnExport = s.exportPDF
	e.OnChange = s.changed
	s.Overlay.Initialize()
	return s
}

func (s *Shell) changed(kind state.ChangeKind) {
	s.Overlay.Changed(kind)
	s.toolbar.sync()
}

// Content stacks the overlay over the host and puts the toolbar on top.
func (s *Shell) Content() fyne.CanvasObject {
	return container.NewBorder(s.toolbar.content(), nil, nil, nil,
		container.NewStack(s.host, s.Overlay))
}

// ApplyConfig picks up the settings that can change while running.
func (s *Shell) ApplyConfig(cfg config.Config) {
	s.Engine.SetFadeDelay(cfg.FadeDelay)
	s.Engine.SetEraseRadius(cfg.EraseRadius)
}

func (s *Shell) Close() {
	s.Overlay.Teardown()
}

func (s *Shell) exportPDF() {
	if s.window == nil {
		return
	}
	size := s.Overlay.Size()
	strokes := s.Engine.Permanent()
	dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		if wc == nil {
			return
		}
		defer func() {
			if err := wc.Close(); err != nil {
				log.Printf("[UI] Error closing export: %v", err)
			}
		}()
		if err := export.WritePDF(wc, strokes, float64(size.Width), float64(size.Height)); err != nil {
			log.Printf("[UI] Export failed: %v", err)
			dialog.ShowError(err, s.window)
			return
		}
		log.Printf("[UI] Exported %d strokes to %s", len(strokes), wc.URI())
	}, s.window)
}

// installShortcuts binds undo and a quick way out of drawing.
func (s *Shell) installShortcuts(c fyne.Canvas) {
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { s.Engine.Undo() })
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			s.Engine.SetActive(false)
		case fyne.KeyDelete:
			s.Engine.Clear()
		}
	})
}

// RunApp opens the overlay window and blocks until it is closed. When
// configPath is set the file is watched and live settings are re-applied.
// withDemo pre-draws the demo annotations.
func RunApp(cfg config.Config, configPath string, withDemo bool) {
	a := app.NewWithID("io.github.shreyash39.laserpointer")
	w := a.NewWindow("Laser Pointer")
	w.Resize(fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight))

	shell := NewShell(cfg, hostContent())
	shell.window = w
	shell.installShortcuts(w.Canvas())
	w.SetContent(shell.Content())
	w.SetOnClosed(shell.Close)
	if withDemo {
		demo.Replay(shell.Engine, demo.Gestures(cfg.WindowWidth, cfg.WindowHeight*0.75))
	}

	// A drag interrupted by the app losing focus must not stay open.
	a.Lifecycle().SetOnExitedForeground(shell.Engine.PointerCancel)

	if configPath != "" {
		stop, err := config.Watch(configPath, func(c config.Config) {
			fyne.Do(func() { shell.ApplyConfig(c) })
		})
		if err != nil {
			log.Printf("[UI] Config reload disabled: %v", err)
		} else {
			defer func() {
				if err := stop(); err != nil {
					log.Printf("[UI] Stopping config watch: %v", err)
				}
			}()
		}
	}

	log.Printf("[UI] Starting overlay %vx%v", cfg.WindowWidth, cfg.WindowHeight)
	w.ShowAndRun()
}

// hostContent stands in for the page being annotated.
func hostContent() fyne.CanvasObject {
	cards := container.NewGridWithColumns(3,
		widget.NewCard("Important Button", "", widget.NewButton("Click Here", func() {
			log.Println("[UI] Host button tapped")
		})),
		widget.NewCard("Key Information", "",
			widget.NewLabel("This text might need to be underlined\nduring a presentation.")),
		widget.NewCard("Navigation Icon", "", widget.NewLabel("→")),
	)
	intro := widget.NewLabel("Circle important elements, underline text or draw arrows.\n" +
		"Laser strokes fade on their own; pen strokes stay until undone, erased or cleared.")
	intro.Wrapping = fyne.TextWrapWord

	return container.NewVScroll(container.NewVBox(
		widget.NewRichTextFromMarkdown("# Sample Content for Annotation"),
		intro,
		cards,
		widget.NewRichTextFromMarkdown("## More Content to Annotate"),
		widget.NewLabel("Lorem ipsum dolor sit amet, consectetur adipiscing elit."),
	))
}
