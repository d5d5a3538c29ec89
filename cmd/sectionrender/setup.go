package main

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"sectionrender/internal/builder"
	"sectionrender/internal/config"
	"sectionrender/internal/meshing"
	"sectionrender/internal/render"
	"sectionrender/internal/world"
)

// loadWorld opens the saved world at path, or creates an empty store when
// there is none.
func loadWorld(path string) (*world.ChunkStore, error) {
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			store, err := world.LoadNBT(f)
			if err != nil {
				return nil, errors.New("loading world failed").
					WithTag("file_name", path).
					Wrap(err)
			}
			logs.WithTag("file_name", path).
				WithTag("columns", len(store.Columns())).
				Info("world loaded")
			return store, nil

		case !os.IsNotExist(err):
			return nil, errors.New("opening world failed").
				WithTag("file_name", path).
				Wrap(err)
		}
	}

	bottom, top := config.GetWorldHeight()
	return world.NewChunkStore(bottom, top), nil
}

func saveWorld(path string, store *world.ChunkStore) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("creating world file failed").
			WithTag("file_name", path).
			Wrap(err)
	}
	if err := store.SaveNBT(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.New("closing world file failed").
			WithTag("file_name", path).
			Wrap(err)
	}

	logs.WithTag("file_name", path).Info("world saved")
	return nil
}

func newGenerator(opts options) world.TerrainGenerator {
	if opts.Flat {
		return world.NewFlatGenerator(4)
	}
	return world.NewGenerator(config.GetSeed(), world.GeneratorOptions{
		SeaLevel: config.GetSeaLevel(),
		Caves:    config.GetCaves(),
	})
}

func setup(opts options) (*FrameLoop, error) {
	store, err := loadWorld(opts.WorldFile)
	if err != nil {
		return nil, err
	}

	streamer := world.NewChunkStreamer(store, newGenerator(opts), opts.StreamWorkers)
	exec := builder.New(config.BuilderThreads())
	settings := config.Snapshot()

	manager := render.NewManager(store, exec, meshing.NewFactory(store), render.Options{
		RenderDistance: settings.RenderDistance,
		ArenaAllocator: settings.ArenaAllocator,
	})

	return NewFrameLoop(store, streamer, manager, opts), nil
}
