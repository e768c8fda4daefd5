// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/token"
	"golang.org/x/sync/errgroup"
)

var cmdServeMetrics = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve ledger metrics for Prometheus",
	Args:  cobra.NoArgs,
	Run:   serveMetrics,
}

var flagServeMetrics struct {
	Listen string
}

func init() {
	cmdMain.AddCommand(cmdServeMetrics)
	cmdServeMetrics.Flags().StringVar(&flagServeMetrics.Listen, "listen", "", "Listen address, overrides the configuration")
}

func serveMetrics(*cobra.Command, []string) {
	inst := open()
	defer inst.close()

	listen := inst.config.Metrics.Listen
	if flagServeMetrics.Listen != "" {
		listen = flagServeMetrics.Listen
	}
	if !inst.config.Metrics.Enabled && flagServeMetrics.Listen == "" {
		inst.close()
		fatalf("metrics are disabled, enable them in %s or pass --listen", configFile())
	}

	// The default registry carries the storage and call metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(token.NewCollector(inst.token))
	gatherers := prometheus.Gatherers{reg, prometheus.DefaultGatherer}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	inst.logger.Info("Serving metrics", "module", "metrics", "address", listen)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})

	err := g.Wait()
	if err != nil {
		inst.close()
		fatalf("serve metrics: %v", err)
	}
}
