package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"sync"

	"github.com/lintang-b-s/isomatch/pkg/config"
	"github.com/lintang-b-s/isomatch/pkg/graphbuilder"
	"github.com/lintang-b-s/isomatch/pkg/kv"
	"github.com/lintang-b-s/isomatch/pkg/linksource"
)

var (
	mapFile    = flag.String("f", "solo_jogja.osm.pbf", "road network file (.osm.pbf or .geojson)")
	configFile = flag.String("config", "", "yaml config file")
	dbPath     = flag.String("db", "", "badger db directory, overrides storage.db_path")
	noH3Index  = flag.Bool("noh3", false, "skip building the h3 cell index")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		// ./bin/isomatch-preprocessing -cpuprofile=isomatchcpu.prof -memprofile=isomatchmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("reading road network file %s", *mapFile)
	f, err := os.Open(*mapFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	scanner, err := newLinkScanner(ctx, *mapFile, f)
	if err != nil {
		log.Fatal(err)
	}

	graph, err := graphbuilder.Build(scanner, graphbuilder.WithBoundingBox(true))
	if err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "build_graph")

	kvDB, err := kv.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer kvDB.Close()

	var (
		wg    sync.WaitGroup
		h3Err error
	)
	if !*noH3Index {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h3Err = kvDB.BuildH3IndexedEdges(ctx, graph)
		}()
	}

	log.Printf("saving graph to %s...", cfg.Storage.DBPath)
	if err := kvDB.SaveGraph(ctx, graph); err != nil {
		cancel()
		wg.Wait()
		log.Fatal(err)
	}

	wg.Wait()
	if h3Err != nil {
		log.Fatalf("error building h3 index: %v", h3Err)
	}
	recordMemProfile(memprofile, "save_graph")

	fmt.Printf("\ngraph with %d nodes and %d edges ready!!\n", graph.NumberOfNodes(), graph.NumberOfEdges())
}

func newLinkScanner(ctx context.Context, path string, f *os.File) (graphbuilder.LinkScanner, error) {
	switch {
	case strings.HasSuffix(path, ".osm.pbf"), strings.HasSuffix(path, ".pbf"):
		return linksource.NewOSMScanner(ctx, f), nil
	case strings.HasSuffix(path, ".geojson"), strings.HasSuffix(path, ".json"):
		return linksource.NewGeoJSONScanner(f)
	}
	return nil, fmt.Errorf("unsupported road network file %s", filepath.Base(path))
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
