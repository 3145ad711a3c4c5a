/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

A Metrics value is registered on a caller supplied prometheus.Registerer and
handed to the window manager, worker pool, permission broker, file store and
HTTP layer. All recording methods accept a nil receiver, so components built
without metrics skip collection.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
