package helper

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// NewLogger builds the root logger of a command. Logs go to stderr so that
// command results on stdout stay parseable.
func NewLogger(level string, jsonFormat bool) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "polygon-xt",
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     os.Stderr,
	})
}

// SetupTelemetry installs the global metrics sink. When addr is set the
// metrics are also served for prometheus on addr until the returned closer runs.
func SetupTelemetry(addr string, logger hclog.Logger) (func(), error) {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	metricsConf := metrics.DefaultConfig("xt")
	metricsConf.EnableHostname = false

	if addr == "" {
		if _, err := metrics.NewGlobal(metricsConf, inm); err != nil {
			return nil, err
		}

		return func() {}, nil
	}

	promSink, err := prometheus.NewPrometheusSinkFrom(prometheus.PrometheusOpts{
		Name:       "xt_prometheus_sink",
		Expiration: 0,
	})
	if err != nil {
		return nil, err
	}

	if _, err := metrics.NewGlobal(metricsConf, metrics.FanoutSink{inm, promSink}); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("prometheus server started", "addr", listener.Addr().String())

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prometheus server failed", "err", err)
		}
	}()

	return func() {
		_ = srv.Close()
	}, nil
}
