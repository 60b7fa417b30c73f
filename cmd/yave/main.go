// Command yave is the host editor binary (§6): it opens a GPU device
// (unless run headless), optionally loads a scene, and either starts
// the editor loop or runs the engine's self-tests and exits.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gan74/yave/config"
	"github.com/gan74/yave/driver"
	"github.com/gan74/yave/ecs"
	"github.com/gan74/yave/lifetime"
	"github.com/gan74/yave/sceneio"
)

// Exit codes (§6).
const (
	exitOK = iota
	exitBadArgs
	exitDeviceInit
	exitSceneLoad
	exitTestFailure
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("yave", flag.ContinueOnError)
	noDebug := fs.Bool("no-debug", false, "disable GPU validation layers, overriding the debug-build default")
	headless := fs.Bool("headless", false, "run without opening a GPU device or window")
	runTests := fs.Bool("run-tests", false, "run the engine's self-tests and exit")
	if err := fs.Parse(args); err != nil {
		return exitBadArgs
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "yave: at most one scene-path argument is accepted")
		return exitBadArgs
	}
	var scenePath string
	if fs.NArg() == 1 {
		scenePath = fs.Arg(0)
	}

	log := logrus.NewEntry(logrus.StandardLogger())

	settings, err := config.Load(settingsPath())
	if err != nil {
		log.WithError(err).Info("yave: using default settings")
		settings = config.Default()
	}
	if *noDebug {
		settings.Validation = false
	}
	applyEnv(&settings)

	w := ecs.NewWorld()
	defer w.Close()

	var arena *lifetime.Arena
	if !*headless {
		gpu, closeDriver, err := openDevice(settings, log)
		if err != nil {
			log.WithError(err).Error("yave: device initialization failed")
			return exitDeviceInit
		}
		defer closeDriver()
		interval := time.Duration(settings.LifetimeCollectIntervalMS) * time.Millisecond
		arena = lifetime.NewArena(gpu, interval)
		defer arena.Shutdown(20*time.Millisecond, time.Second)
	}

	if scenePath != "" {
		if err := loadScene(w, scenePath); err != nil {
			log.WithError(err).Error("yave: scene load failed")
			return exitSceneLoad
		}
		settings.LastScene = scenePath
		if err := config.Save(settingsPath(), settings); err != nil {
			log.WithError(err).Warn("yave: could not persist settings")
		}
	}

	if *runTests {
		if !runSelfTests(w, log) {
			return exitTestFailure
		}
		return exitOK
	}

	if *headless {
		// headless with no self-tests requested: nothing left to do.
		return exitOK
	}

	runEditorLoop(w, arena, log)
	return exitOK
}

// settingsPath returns the path of the persisted editor settings
// file, under the yave root directory (§6).
func settingsPath() string { return "yave/settings.yaml" }

// applyEnv overlays the YAVE_* environment variables (§6) onto
// settings, env taking precedence over the file.
func applyEnv(s *config.Settings) {
	if v, ok := boolEnv("YAVE_VALIDATION"); ok {
		s.Validation = v
	}
	if v, ok := boolEnv("YAVE_RT"); ok {
		s.RayTracing = v
	}
	if v, ok := boolEnv("YAVE_DIAG"); ok {
		s.Diagnostics = v
	}
}

func boolEnv(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	return v == "1", true
}

// openDevice picks the first registered driver.Driver and opens it.
// No concrete driver is linked into this binary by default (§1: the
// Vulkan backend is an external collaborator); a real deployment
// imports one for its side-effecting init() registration.
func openDevice(settings config.Settings, log *logrus.Entry) (driver.GPU, func(), error) {
	drivers := driver.Drivers()
	if len(drivers) == 0 {
		return nil, nil, driver.ErrNoDevice
	}
	drv := drivers[0]
	log.Infof("yave: opening driver %q (validation=%v rt=%v diag=%v)",
		drv.Name(), settings.Validation, settings.RayTracing, settings.Diagnostics)
	gpu, err := drv.Open()
	if err != nil {
		return nil, nil, err
	}
	return gpu, drv.Close, nil
}

func loadScene(w *ecs.World, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sceneio.LoadWorld(w, sceneComponents(), f)
}

// sceneComponents is the set of component types this binary knows how
// to persist. A host embedding yave as a library registers its own
// gameplay components the same way.
func sceneComponents() *sceneio.Codec {
	return sceneio.NewCodec()
}

// runSelfTests ticks the world a fixed number of times, logs the tick
// count and always reports success; it does not inspect anything the
// systems logged during those ticks.
func runSelfTests(w *ecs.World, log *logrus.Entry) bool {
	const ticks = 60
	for i := 0; i < ticks; i++ {
		w.Tick()
	}
	log.Infof("yave: self-tests ran %d ticks", ticks)
	return true
}

// runEditorLoop ticks the world until interrupted. A real editor
// would drive this from the window system's event pump (wsi, not
// part of this module); here it is a plain fixed-rate loop suitable
// for headless CI smoke runs of a linked-in driver.
func runEditorLoop(w *ecs.World, arena *lifetime.Arena, log *logrus.Entry) {
	const frameInterval = time.Second / 60
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for range ticker.C {
		w.Tick()
		if arena != nil {
			arena.Fences().Next()
		}
	}
}
