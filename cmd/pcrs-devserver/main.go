package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/internal/logging"
	"github.com/jrsteele09/pcrs-client/server"
	fakeuserrepo "github.com/jrsteele09/pcrs-client/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	demo := flag.Bool("demo", false, "seed a demo vendor, customer, products and benchmarks")
	flag.Parse()

	if err := run(*demo); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run(demo bool) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(c.GetLogLevel(), c.GetLogFormat(), os.Stderr)
	displayAppname(c.GetAppName() + " dev")

	var opts []server.Option
	if demo {
		opts = append(opts, server.WithDemoData())
	}
	srv, err := server.New(c, server.NewInMemoryRepos(fakeuserrepo.NewFakeUserRepo()), opts...)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{Addr: c.GetDevServerPort(), Handler: srv}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
