package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/kellandavis/lumenmlt/pkg/config"
	"github.com/kellandavis/lumenmlt/pkg/integrator"
	"github.com/kellandavis/lumenmlt/pkg/loaders"
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// RenderFrameFlags are the flags shared by the render-frame command.
var RenderFrameFlags = []cli.Flag{
	cli.IntFlag{Name: "width", Value: 400, Usage: "frame width"},
	cli.IntFlag{Name: "height", Value: 400, Usage: "frame height"},
	cli.IntFlag{Name: "spp", Value: 256, Usage: "target samples per pixel"},
	cli.IntFlag{Name: "chains", Value: 64, Usage: "MLT chain count (mlt integrator only)"},
	cli.IntFlag{Name: "workers", Value: 0, Usage: "thread pool size (0 = runtime.NumCPU())"},
	cli.StringFlag{Name: "integrator", Value: "pathtracer", Usage: "pathtracer|mlt"},
	cli.StringFlag{Name: "mutations", Value: "", Usage: "comma-separated MLT mutation kinds, empty = all"},
	cli.StringFlag{Name: "scene", Value: "", Usage: "scene text file (empty = built-in Cornell box)"},
	cli.StringFlag{Name: "out, o", Value: "render.png", Usage: "output PNG path"},
}

// RenderFrame renders a single still frame to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	integ, err := config.ParseIntegrator(ctx.String("integrator"))
	if err != nil {
		return err
	}
	mutations, err := config.ParseMutations(ctx.String("mutations"))
	if err != nil {
		return err
	}

	opts := config.Render{
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		Chains:          ctx.Int("chains"),
		Workers:         ctx.Int("workers"),
		Integrator:      integ,
		Mutations:       mutations,
		ScenePath:       ctx.String("scene"),
		OutPath:         ctx.String("out"),
	}

	sc, err := loadScene(opts)
	if err != nil {
		return err
	}

	pool := renderer.NewThreadPool(opts.Workers)
	defer pool.Stop()

	var engine renderer.Integrator
	switch opts.Integrator {
	case config.MLT:
		engine = integrator.NewMLT(opts.Width, opts.Height, opts.Chains, uint64(time.Now().UnixNano()), opts.Mutations)
	default:
		engine = integrator.NewPathTracer(opts.Width, opts.Height, uint64(time.Now().UnixNano()))
	}

	logger.Noticef("rendering %dx%d with %s, target %d spp", opts.Width, opts.Height, opts.Integrator, opts.SamplesPerPixel)
	start := time.Now()

	step := 1
	done := 0
	for done < opts.SamplesPerPixel {
		n := step
		if done+n > opts.SamplesPerPixel {
			n = opts.SamplesPerPixel - done
		}
		engine.Accumulate(sc, n, pool)
		done += n
		if step < config.MaxSampleStep {
			step *= 2
		}
	}
	renderTime := time.Since(start)

	dst := renderer.NewImageBuffer(opts.Width, opts.Height)
	engine.UpdateFrameBuffer(dst)

	if err := writePNG(dst, opts.OutPath); err != nil {
		return err
	}

	displayFrameStats(opts, renderTime, engine.NumSamplesPerPixel())
	logger.Noticef("render saved to %s", opts.OutPath)
	return nil
}

func loadScene(opts config.Render) (*scene.Scene, error) {
	if opts.ScenePath != "" {
		return loaders.LoadScene(opts.ScenePath, opts.Width, opts.Height)
	}
	return scene.NewCornellBox(opts.Width, opts.Height, 5)
}

func writePNG(buf *renderer.ImageBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b := buf.At(x, y)
			img.Set(x, y, color.RGBA{
				R: uint8(r * 255),
				G: uint8(g * 255),
				B: uint8(b * 255),
				A: 255,
			})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cmd: creating output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("cmd: encoding PNG: %w", err)
	}
	return nil
}

func displayFrameStats(opts config.Render, renderTime time.Duration, samplesPerPixel float64) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Integrator", "Resolution", "Samples/px", "Chains", "Render time"})
	chains := fmt.Sprintf("%d", opts.Chains)
	if opts.Integrator != config.MLT {
		chains = "-"
	}
	table.Append([]string{
		string(opts.Integrator),
		fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		fmt.Sprintf("%.1f", samplesPerPixel),
		chains,
		renderTime.String(),
	})
	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
