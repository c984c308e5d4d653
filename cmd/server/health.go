// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corvidrec/corvid/internal/vectorstore"
)

// newHealthServer builds the process's only HTTP surface: /health (always
// 200 once the process is up), /ready (200 only while the Vector Store
// answers a ping — the load-balancer signal from §5's shutdown
// discipline), and /metrics (Prometheus exposition). Routing real
// recommendation and interaction traffic is the embedding service's job,
// per §6 — this core speaks Go APIs, not HTTP.
func newHealthServer(addr string, store *vectorstore.Store) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{Addr: addr, Handler: mux}
}
