package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"

	_ "github.com/lintang-b-s/isomatch/docs"
	"github.com/lintang-b-s/isomatch/pkg/config"
	"github.com/lintang-b-s/isomatch/pkg/engine/isochrone"
	"github.com/lintang-b-s/isomatch/pkg/kv"
	"github.com/lintang-b-s/isomatch/pkg/server/rest"
	"github.com/lintang-b-s/isomatch/pkg/server/rest/service"
	"github.com/lintang-b-s/isomatch/pkg/snap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mymiddleware "github.com/lintang-b-s/isomatch/pkg/server/middleware"
)

var (
	configFile   = flag.String("config", "", "yaml config file")
	listenAddr   = flag.String("listenaddr", "", "server listen address, overrides server.listen_addr")
	dbPath       = flag.String("db", "", "badger db directory, overrides storage.db_path")
	useRateLimit = flag.Bool("ratelimit", false, "use rate limit")
	memprofile   = flag.String("memprofile", "", "write memory profile to this file")
)

//	@title			isomatch API
//	@version		1.0
//	@description	point matching and isochrones on a road network graph

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/
// @schemes	http
func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	if *useRateLimit {
		cfg.Server.UseRateLimit = true
	}

	kvDB, err := kv.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer kvDB.Close()

	graph, err := kvDB.LoadGraph(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	recordMemProfile(memprofile, "load_graph")

	edgeIndex, err := snap.NewEdgeIndex(graph)
	if err != nil {
		log.Fatal(err)
	}

	opts := []service.Option{
		service.WithNumWorkers(cfg.Matching.NumWorkers),
		service.WithSearchRadius(cfg.Matching.SearchRadius),
	}
	if cfg.Storage.UseH3Index {
		opts = append(opts, service.WithCellIndex(kvDB))
	}
	isomatchSvc := service.NewMatchingService(graph, edgeIndex, isochrone.NewCalculator(graph), opts...)
	recordMemProfile(memprofile, "service_init")

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Server.UseRateLimit {
		r.Use(mymiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Handler)
	}

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(cfg.Server.SwaggerURL), //The url pointing to API definition
	))

	rest.IsomatchRouter(r, isomatchSvc, rest.WithMetrics(m))

	fmt.Printf("\nroad network with %d nodes, %d edges ready!!", graph.NumberOfNodes(), graph.NumberOfEdges())
	fmt.Printf("\nserver started at %s\n", cfg.Server.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.Server.ListenAddr, r))
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
