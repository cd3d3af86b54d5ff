package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/scene-bridge/native"
	"github.com/wippyai/scene-bridge/native/wasmengine"
	"github.com/wippyai/scene-bridge/scene"
)

func main() {
	var (
		engineFile  = flag.String("engine", "", "Path to engine wasm module")
		configFile  = flag.String("config", "", "Path to toml config")
		sceneFile   = flag.String("scene", "", "Scene file to append under the root")
		list        = flag.Bool("list", false, "Print the scene tree and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *engineFile != "" {
		cfg.Engine.Path = *engineFile
	}
	if *sceneFile != "" {
		cfg.Scene.Preload = append(cfg.Scene.Preload, *sceneFile)
	}

	if cfg.Engine.Path == "" {
		fmt.Fprintln(os.Stderr, "Usage: scenectl -engine <engine.wasm> [-scene file] [-config file.toml]")
		fmt.Fprintln(os.Stderr, "       scenectl -engine <engine.wasm> -scene file -list")
		fmt.Fprintln(os.Stderr, "       scenectl -engine <engine.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(cfg *Config, listOnly bool) error {
	ctx := context.Background()

	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()
	wasmengine.SetLogger(log.Named("engine"))

	data, err := os.ReadFile(cfg.Engine.Path)
	if err != nil {
		return fmt.Errorf("read engine: %w", err)
	}

	eng, err := wasmengine.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("load engine: %w", err)
	}
	defer eng.Close(ctx)

	sc, err := scene.New(eng, scene.WithLogger(log.Named("scene")))
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}

	roots, err := sc.CreateNodes(1, cfg.Engine.ComponentHint)
	if err != nil {
		return fmt.Errorf("create root: %w", err)
	}
	root := roots[0]

	for _, path := range cfg.Scene.Preload {
		path := path
		err := root.AppendScene(path, func(n *scene.Node, err error) {
			if err != nil {
				log.Warn("scene load failed", zap.String("path", path), zap.Error(err))
				return
			}
			log.Info("scene appended", zap.String("path", path), zap.Uint32("root", uint32(n.Handle())))
		})
		if err != nil {
			return fmt.Errorf("append %s: %w", path, err)
		}
	}
	for _, path := range cfg.Scene.Textures {
		path := path
		err := sc.LoadTexture(path, func(tex *scene.Texture, err error) {
			if err != nil {
				log.Warn("texture load failed", zap.String("path", path), zap.Error(err))
				return
			}
			log.Info("texture loaded", zap.String("path", path), zap.Uint32("handle", uint32(tex.Handle())))
		})
		if err != nil {
			return fmt.Errorf("load texture %s: %w", path, err)
		}
	}

	if n := sc.Pending(); n > 0 {
		log.Info("loads still pending", zap.Int("count", n))
	}

	fmt.Printf("Engine: %s\n", cfg.Engine.Path)
	if !listOnly {
		children, err := root.Children()
		if err != nil {
			return err
		}
		fmt.Printf("Root node %d with %d children, %d loads pending\n",
			root.Handle(), len(children), sc.Pending())
		return nil
	}

	fmt.Println()
	return printTree(sc, root, 0)
}

// printTree walks the scene graph depth first.
func printTree(sc *scene.Context, n *scene.Node, depth int) error {
	indent := strings.Repeat("  ", depth)

	t, err := n.Transform()
	if err != nil {
		return err
	}
	active, err := n.Active()
	if err != nil {
		return err
	}
	marker := ""
	if !active {
		marker = " (inactive)"
	}
	fmt.Printf("%snode %d%s pos=%v\n", indent, n.Handle(), marker, t.Position)

	if err := printComponents(n, indent+"  "); err != nil {
		return err
	}

	children, err := n.Children()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := printTree(sc, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

var builtinKinds = []native.Kind{
	native.KindMeshRenderer,
	native.KindLight,
	native.KindCamera,
	native.KindRigidBody,
	native.KindCollider,
	native.KindAnimator,
}

func printComponents(n *scene.Node, indent string) error {
	for _, kind := range builtinKinds {
		comp, err := n.Component(kind)
		if err != nil {
			return err
		}
		if comp == nil {
			continue
		}
		fmt.Printf("%s- %s\n", indent, kindName(kind))

		if r, ok := comp.(*scene.MeshRenderer); ok {
			if err := printRenderer(r, indent+"  "); err != nil {
				return err
			}
		}
	}
	return nil
}

func printRenderer(r *scene.MeshRenderer, indent string) error {
	mesh, err := r.Mesh()
	if err != nil {
		return err
	}
	if mesh != nil {
		fmt.Printf("%smesh: %d vertices\n", indent, mesh.VertexCount())
	}

	mat, err := r.Material()
	if err != nil {
		return err
	}
	if mat == nil {
		return nil
	}
	params, err := mat.Params()
	if err != nil {
		return err
	}
	for _, p := range params {
		v, ok, err := mat.Get(p.Name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s%s: %s (unset)\n", indent, p.Name, p.Type)
			continue
		}
		fmt.Printf("%s%s: %s = %v\n", indent, p.Name, p.Type, v)
	}
	return nil
}

func kindName(kind native.Kind) string {
	switch kind {
	case native.KindMeshRenderer:
		return "mesh-renderer"
	case native.KindLight:
		return "light"
	case native.KindCamera:
		return "camera"
	case native.KindRigidBody:
		return "rigid-body"
	case native.KindCollider:
		return "collider"
	case native.KindAnimator:
		return "animator"
	}
	return fmt.Sprintf("kind-%d", kind)
}
