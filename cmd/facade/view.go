package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/snjsomnath/threejsEditor-sub001/internal/app"
	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/palette"
	"github.com/snjsomnath/threejsEditor-sub001/internal/render"
)

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open an interactive viewer over the scene",
		Long: `view draws every building's windows and lets you edit the building closest to the camera target.

Keys: F/shift+F floors, W/shift+W window ratio, O overhangs, C duplicate,
D delete (prefix a count, e.g. "3D"), X compact, P pool stats,
Tab/shift+Tab next/previous building, R recenter, arrows pan.
Drag with the left button to pan, the right button to orbit, scroll to zoom.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, scene, err := opts.load()
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), cfg, scene)
		},
	}
}

func makeTitle(fps, avgFrameTime float64, renderStats render.Stats, memStats memory.Stats) string {
	return fmt.Sprintf("Facade (%.1f FPS, %.2fms/frame, %d buildings, %d/%d windows, %d orphaned, %d draw calls/frame, %.2fµs/draw, %.1fMiB GPU)",
		fps,
		avgFrameTime,
		memStats.TotalBuildings,
		memStats.OwnedSlots,
		memStats.Capacity,
		memStats.OrphanedSlots,
		renderStats.DrawCalls,
		renderStats.LastDrawTimeUs,
		float64(memStats.GPUBytes)/(1024.0*1024.0),
	)
}

func runViewer(ctx context.Context, cfg config.WindowConfig, scene *building.Scene) error {
	logger := loggerFromContext(ctx)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing GLFW: %w", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(1280, 960, "Facade", nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}

	pal, err := palette.FromConfig(cfg.Colors)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(pal)
	if err != nil {
		return err
	}
	defer renderer.Delete()

	cw, ch := window.GetFramebufferSize()
	application, err := app.NewApp(renderer, app.NewView(cw, ch), cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	placed := application.LoadScene(scene)
	logger.Info("scene loaded", "buildings", application.Buildings.Len(), "windows", placed)
	if application.Buildings.Len() > 0 {
		application.View.ResetTo(sceneCenter(application.Buildings.Entries()))
	}

	eventHandlers := NewEventHandlers(application, window)
	bg := pal.Clear()

	frameCount, frameTimeSum := 0, 0.0 // reset every second
	lastFPSUpdate := time.Now()

	// Main loop.
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frameStart := time.Now()

		eventHandlers.handleContinuousPanning()
		application.Frame()

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		renderer.Draw(application.View.ViewProj())
		window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			memStats := application.Windows.Stats()
			renderStats := renderer.Stats()
			window.SetTitle(makeTitle(fps, avgFrameTime, renderStats, memStats))

			runtimeLogger.Print("=== Performance statistics ===")
			runtimeLogger.Printf("Frame rate:     %.1f FPS (%.2f ms/frame, %d draw calls/frame)", fps, avgFrameTime, renderStats.DrawCalls)
			runtimeLogger.Printf("Windows:        %d buildings, %d owned, %d drawn, %d orphaned", memStats.TotalBuildings, memStats.OwnedSlots, renderStats.Instances, memStats.OrphanedSlots)
			runtimeLogger.Printf("Uploads:        %d bytes last frame", renderStats.UploadedBytes)
			runtimeLogger.Printf("Render time:    %.2f µs (last draw)", renderStats.LastDrawTimeUs)
			runtimeLogger.Printf("Animations:     %d active", application.Windows.Animations().Active())
			runtimeLogger.Print("==============================")

			application.Windows.Pool().PrintStats()
		}

		if _, err := application.Maintain(); err != nil {
			log.Fatal("window pool integrity invalid", "err", err)
		}
	}
	return nil
}

// sceneCenter is the mean of the building centers.
func sceneCenter(entries []*app.Entry) geom.Point {
	var sum geom.Point
	for _, e := range entries {
		sum = sum.Add(e.Center)
	}
	if len(entries) == 0 {
		return sum
	}
	return sum.Scale(1 / float64(len(entries)))
}
