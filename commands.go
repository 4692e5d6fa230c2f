package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/misc"
	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/BrugadaSyndrome/FractalServer/rpc"
	"github.com/BrugadaSyndrome/FractalServer/server"
	"github.com/BrugadaSyndrome/FractalServer/task"
	"github.com/BrugadaSyndrome/bslogger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fractalserver",
		Short: "Render the Mandelbrot set and checkerboards over HTTP",
	}
	cmd.AddCommand(serveCmd(), renderCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		settingsFile string
		address      string
		logFile      string
		workers      int
		generation   task.Generation
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, websocket and RPC render server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := bslogger.NewLogger("Serve", bslogger.Normal, nil)

			settings, err := server.NewSettings(settingsFile)
			if misc.CheckError(err, logger, misc.Error, "Loading settings") {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("address") {
				settings.ServerAddress = address
			}
			if flags.Changed("log-file") {
				settings.LogFile = logFile
			}
			if flags.Changed("workers") {
				settings.Workers = workers
			}
			if flags.Changed("generation") {
				settings.TaskGeneration = generation
			}

			file, err := settings.OpenLogFile()
			if misc.CheckError(err, logger, misc.Error, "Opening log file") {
				return err
			}
			if file != nil {
				defer file.Close()
			}

			s, err := server.NewServer(settings, file)
			if misc.CheckError(err, logger, misc.Error, "Creating server") {
				return err
			}
			if err := s.Run(); misc.CheckError(err, logger, misc.Error, "Starting server") {
				return err
			}

			<-cmd.Context().Done()
			logger.Info("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return s.Stop(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&settingsFile, "settings", "", "JSON settings file")
	flags.StringVar(&address, "address", server.DefaultServerAddress, "address to listen on")
	flags.StringVar(&logFile, "log-file", "", "file to mirror log output to")
	flags.IntVar(&workers, "workers", 0, "render workers, 0 uses every CPU")
	flags.Var(&generation, "generation", "task generation: Row, Column, Image or Grid")
	return cmd
}

// cameraFlags binds the camera fields to command line flags.
func cameraFlags(flags *pflag.FlagSet, c *camera.Camera, paletteScale *float64) {
	flags.Float64Var(&c.CenterX, "center-x", -0.75, "real coordinate of the image center")
	flags.Float64Var(&c.CenterY, "center-y", 0, "imaginary coordinate of the image center")
	flags.IntVar(&c.Width, "width", 1024, "image width in pixels")
	flags.IntVar(&c.Height, "height", 1024, "image height in pixels")
	flags.Float64Var(&c.Scale, "scale", 0.35, "zoom factor")
	flags.Float64Var(paletteScale, "palette-scale", 1, "palette cycling multiplier")
}

func renderCmd() *cobra.Command {
	var (
		c            camera.Camera
		paletteScale float64
		out          string
		format       string
		remote       string
		settingsFile string
	)

	cmd := &cobra.Command{
		Use:       "render {mandelbrot|checkerboard}",
		Short:     "Render a single image to a file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{server.KindMandelbrot, server.KindCheckerboard},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := bslogger.NewLogger("Render", bslogger.Normal, nil)

			if cmd.Flags().Changed("palette-scale") {
				c.PaletteScale = &paletteScale
			}
			if out == "" {
				f, err := raster.ParseFormat(format)
				if err != nil {
					return err
				}
				out = args[0] + f.Extension()
			}
			request := server.RenderRequest{
				Kind:   args[0],
				Camera: c,
				Format: format,
			}

			var reply server.RenderReply
			var err error
			if remote != "" {
				reply, err = renderRemote(cmd.Context(), remote, request)
			} else {
				reply, err = renderLocal(cmd.Context(), settingsFile, request)
			}
			if misc.CheckError(err, logger, misc.Error, fmt.Sprintf("Rendering %s %s", request.Kind, request.Camera)) {
				return err
			}

			written, err := misc.WriteFile(out, reply.Image)
			if misc.CheckError(err, logger, misc.Error, "Saving image") {
				return err
			}
			logger.Infof("Wrote %d bytes of %s to %s", written, reply.ContentType, out)
			return nil
		},
	}

	flags := cmd.Flags()
	cameraFlags(flags, &c, &paletteScale)
	flags.StringVar(&out, "out", "", "output file, defaults to the image kind plus the format extension")
	flags.StringVar(&format, "format", "png", "image format: png, bmp or tiff")
	flags.StringVar(&remote, "remote", "", "address of a running server to render on over RPC")
	flags.StringVar(&settingsFile, "settings", "", "JSON settings file for local rendering")
	return cmd
}

func renderLocal(ctx context.Context, settingsFile string, request server.RenderRequest) (server.RenderReply, error) {
	settings, err := server.NewSettings(settingsFile)
	if err != nil {
		return server.RenderReply{}, err
	}
	s, err := server.NewServer(settings, nil)
	if err != nil {
		return server.RenderReply{}, err
	}
	return s.RenderImage(ctx, request)
}

func renderRemote(ctx context.Context, address string, request server.RenderRequest) (server.RenderReply, error) {
	client := rpc.NewHttpClient(address, "RenderClient", nil)
	if err := client.Connect(ctx); err != nil {
		return server.RenderReply{}, err
	}
	defer client.Disconnect()

	var reply server.RenderReply
	if err := client.Call(ctx, "RenderService.Image", request, &reply); err != nil {
		return server.RenderReply{}, err
	}
	if len(reply.Image) == 0 {
		return reply, errors.New("server returned an empty image")
	}
	return reply, nil
}
