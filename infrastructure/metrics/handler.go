package metrics

import (
	"net/http/pprof"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RuntimeGauges are refreshed on every scrape.
type RuntimeGauges struct {
	goroutines  prometheus.Gauge
	memoryAlloc prometheus.Gauge
	numGC       prometheus.Gauge
}

func NewRuntimeGauges(reg prometheus.Registerer) *RuntimeGauges {
	g := &RuntimeGauges{
		goroutines:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "app_go_routines", Help: "Number of goroutines"}),
		memoryAlloc: prometheus.NewGauge(prometheus.GaugeOpts{Name: "app_sys_memory_alloc", Help: "Bytes allocated and in use"}),
		numGC:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "app_go_numGC", Help: "Number of completed GC cycles"}),
	}
	reg.MustRegister(g.goroutines, g.memoryAlloc, g.numGC)
	return g
}

func GetHandler(router *gin.RouterGroup, gatherer prometheus.Gatherer, gauges *RuntimeGauges) {
	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	router.GET("/metrics", systemMetricsMiddleware(gauges), gin.WrapH(handler))

	pprofGroup := router.Group("/debug/pprof")
	{
		pprofGroup.GET("/", gin.WrapF(pprof.Index))
		pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
		pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))
		pprofGroup.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofGroup.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofGroup.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	}
}

func systemMetricsMiddleware(g *RuntimeGauges) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		g.goroutines.Set(float64(runtime.NumGoroutine()))
		g.memoryAlloc.Set(float64(stats.Alloc))
		g.numGC.Set(float64(stats.NumGC))

		ctx.Next()
	}
}
