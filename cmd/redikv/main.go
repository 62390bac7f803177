// Command redikv runs a single-node, in-memory RESP key-value server.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akashmaji946/redikv/internal/config"
	"github.com/akashmaji946/redikv/internal/diag"
	"github.com/akashmaji946/redikv/internal/keyspace"
	"github.com/akashmaji946/redikv/internal/logging"
	"github.com/akashmaji946/redikv/internal/metrics"
	"github.com/akashmaji946/redikv/internal/server"
)

const banner = `>>> redikv <<<`

func main() {
	fmt.Println(banner)

	cfg := config.Load()
	log := logging.Default(cfg.LogLevel)

	met := metrics.New()

	ks := keyspace.New(met)
	expiryStop := make(chan struct{})
	go ks.Run(expiryStop)

	diagStop := make(chan struct{})
	go diag.Run(diagStop, 10*time.Second, log)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Warnf("metrics listener stopped: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		log.Errorf("cannot listen on port %d: %v", cfg.Port, err)
		os.Exit(1)
	}
	log.Infof("listening on port %d", cfg.Port)

	srv := server.New(ks, log, met)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("signal received, shutting down")
		ln.Close()
		srv.CloseAll()
		close(diagStop)
		close(expiryStop)
		os.Exit(0)
	}()

	srv.Serve(ln)
	log.Infof("all connections closed, goodbye")
}
