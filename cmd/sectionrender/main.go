package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"sectionrender/internal/config"
)

var (
	// Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "sectionrender_info",
		Help:        "Section renderer information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

type options struct {
	AdminAddr               string        `cli:""        env:"SECTIONRENDER_ADMIN_ADDR"            help:"Admin listening address for metrics. Empty disables it."`
	LogLevel                string        `cli:""        env:"SECTIONRENDER_LOG_LEVEL"             help:"Log level (debug|info|warning|error)."`
	LogIndent               bool          `cli:""        env:"SECTIONRENDER_LOG_INDENT"            help:"Indent logs."`
	RenderDistance          int           `cli:""        env:"SECTIONRENDER_RENDER_DISTANCE"       help:"Render distance in chunks."`
	BuilderThreads          int           `cli:""        env:"SECTIONRENDER_BUILDER_THREADS"       help:"Chunk builder workers. Zero picks one per spare CPU."`
	AlwaysDeferChunkUpdates bool          `cli:""        env:"SECTIONRENDER_ALWAYS_DEFER_UPDATES"  help:"Never wait for important rebuilds within a frame."`
	UseBlockFaceCulling     bool          `cli:""        env:"SECTIONRENDER_BLOCK_FACE_CULLING"    help:"Skip section facings that point away from the camera."`
	UseOcclusionCulling     bool          `cli:""        env:"SECTIONRENDER_OCCLUSION_CULLING"     help:"Cull sections hidden behind opaque sections."`
	UseRaycastCulling       bool          `cli:""        env:"SECTIONRENDER_RAYCAST_CULLING"       help:"Probe sight lines towards the camera while walking the graph."`
	ArenaAllocator          string        `cli:""        env:"SECTIONRENDER_ARENA_ALLOCATOR"       help:"Region arena allocator (async|swap)."`
	Seed                    int64         `cli:""        env:"SECTIONRENDER_SEED"                  help:"Terrain seed."`
	Flat                    bool          `cli:""        env:"SECTIONRENDER_FLAT"                  help:"Generate flat terrain."`
	Caves                   bool          `cli:""        env:"SECTIONRENDER_CAVES"                 help:"Carve caves into the terrain."`
	WorldBottom             int           `cli:",hidden" env:"SECTIONRENDER_WORLD_BOTTOM"          help:"Lowest section coordinate."`
	WorldTop                int           `cli:",hidden" env:"SECTIONRENDER_WORLD_TOP"             help:"Section coordinate above the highest section."`
	WorldFile               string        `cli:""        env:"SECTIONRENDER_WORLD_FILE"            help:"NBT world file to load when it exists."`
	SaveWorld               string        `cli:""        env:"SECTIONRENDER_SAVE_WORLD"            help:"NBT file the world is written to on exit."`
	StreamWorkers           int           `cli:",hidden" env:"SECTIONRENDER_STREAM_WORKERS"        help:"Terrain generation workers."`
	Frames                  int           `cli:""        env:"SECTIONRENDER_FRAMES"                help:"Number of frames to run. Zero runs until interrupted."`
	FrameDuration           time.Duration `cli:",hidden" env:"SECTIONRENDER_FRAME_DURATION"        help:"Target duration of a frame."`
	OrbitRadius             float64       `cli:""        env:"SECTIONRENDER_ORBIT_RADIUS"          help:"Radius in blocks of the camera orbit."`
	EditInterval            int           `cli:",hidden" env:"SECTIONRENDER_EDIT_INTERVAL"         help:"Frames between random block edits. Zero disables edits."`
	StatsInterval           time.Duration `cli:",hidden" env:"SECTIONRENDER_STATS_INTERVAL"        help:"Duration between frame stats logs."`
	Warmup                  bool          `cli:""        env:"SECTIONRENDER_WARMUP"                help:"Build every visible section before the first frame."`
	Version                 bool          `cli:""        env:"-"                                   help:"Show version."`
	Help                    bool          `cli:""        env:"-"                                   help:"Show help."`
}

func main() {
	defaults := config.Snapshot()
	bottom, top := config.GetWorldHeight()

	opts := options{
		AdminAddr:           ":18290",
		LogLevel:            logs.InfoLevel.String(),
		RenderDistance:      defaults.RenderDistance,
		UseBlockFaceCulling: defaults.UseBlockFaceCulling,
		UseOcclusionCulling: defaults.UseOcclusionCulling,
		UseRaycastCulling:   defaults.UseRasterOcclusionCulling,
		ArenaAllocator:      defaults.ArenaAllocator,
		Seed:                config.GetSeed(),
		Caves:               config.GetCaves(),
		WorldBottom:         bottom,
		WorldTop:            top,
		StreamWorkers:       2,
		FrameDuration:       time.Millisecond * 16,
		OrbitRadius:         48,
		EditInterval:        30,
		StatsInterval:       time.Second * 2,
	}

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs the section renderer against a generated or saved world.").
		Options(&opts)
	cli.Load()

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(opts.LogLevel))
	logs.Encoder = json.Marshal
	if opts.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	applyOptions(opts)

	loop, err := setup(opts)
	if err != nil {
		logs.Fatal(errors.New("setting up the renderer failed").Wrap(err))
	}

	logs.WithTag("version", version).
		WithTag("log_level", opts.LogLevel).
		WithTag("render_distance", config.GetRenderDistance()).
		WithTag("builder_threads", config.BuilderThreads()).
		Info("starting section renderer")

	ctx, stop := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	if opts.AdminAddr != "" {
		var admin http.ServeMux
		admin.Handle("/metrics", promhttp.Handler())
		admin.HandleFunc("/debug", loop.HandleDebug)

		g.Go(func() error {
			listenAndServe(ctx, &http.Server{Addr: opts.AdminAddr, Handler: &admin})
			return nil
		})
	}

	g.Go(func() error {
		defer stop()
		return loop.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		logs.Error(errors.New("section renderer stopped").Wrap(err))
	}

	if err := loop.Close(opts.SaveWorld); err != nil {
		logs.Fatal(err)
	}
}

func applyOptions(opts options) {
	config.Apply(config.FrameOptions{
		RenderDistance:            opts.RenderDistance,
		BuilderThreads:            opts.BuilderThreads,
		AlwaysDeferChunkUpdates:   opts.AlwaysDeferChunkUpdates,
		UseBlockFaceCulling:       opts.UseBlockFaceCulling,
		UseOcclusionCulling:       opts.UseOcclusionCulling,
		UseRasterOcclusionCulling: opts.UseRaycastCulling,
		ArenaAllocator:            opts.ArenaAllocator,
	})
	config.SetSeed(opts.Seed)
	config.SetCaves(opts.Caves)
	config.SetWorldHeight(opts.WorldBottom, opts.WorldTop)
}

// listenAndServe runs the servers until ctx is done.
func listenAndServe(ctx context.Context, servers ...*http.Server) {
	go func() {
		<-ctx.Done()

		for _, s := range servers {
			if err := s.Shutdown(context.Background()); err != nil {
				logs.Warn(errors.Newf("shutting down the server failed").
					WithTag("addr", s.Addr).
					Wrap(err))
			}
		}
	}()

	var g errgroup.Group
	for _, s := range servers {
		g.Go(func() error {
			logs.WithTag("addr", s.Addr).Info("starting server")

			switch err := s.ListenAndServe(); err {
			case nil, http.ErrServerClosed, context.Canceled:
				logs.WithTag("addr", s.Addr).Info("stopping server")

			default:
				logs.Warn(errors.Newf("server stopped").
					WithTag("addr", s.Addr).
					Wrap(err))
			}
			return nil
		})
	}
	g.Wait()
}
