// Command filepicker-demo serves a page hosting a document picker and logs
// every selection change.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"impractical.co/filepicker"
	"impractical.co/filepicker/bytesize"
	"impractical.co/filepicker/memory"
	"impractical.co/filepicker/pickerhttp"
	"yall.in"
	"yall.in/colour"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	level := yall.Info
	if err == nil && cfg.Debug {
		level = yall.Debug
	}
	log := yall.New(colour.New(os.Stdout, level))
	if err != nil {
		log.WithError(err).Error("error loading config")
		return 1
	}

	store, err := memory.NewStorer()
	if err != nil {
		log.WithError(err).Error("error creating picker storer")
		return 1
	}

	opts := []pickerhttp.Option{
		pickerhttp.WithLogger(log),
		pickerhttp.WithMaxRequestBytes(cfg.MaxRequestBytes),
		pickerhttp.WithOnFileSelect(logSelection),
	}
	if cfg.SniffContent {
		opts = append(opts, pickerhttp.WithContentSniffing())
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: pickerhttp.New(store, opts...),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.WithField("filepicker.addr", cfg.Addr).Info("serving")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("error serving")
			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("error shutting down")
			return 1
		}
	}
	return 0
}

func logSelection(ctx context.Context, id string, file *filepicker.File) {
	log := yall.FromContext(ctx).WithField("filepicker.id", id)
	if file == nil {
		log.Info("selection cleared")
		return
	}
	log = log.WithField("filepicker.file_name", file.Name)
	log = log.WithField("filepicker.file_size", bytesize.Format(file.Size))
	log = log.WithField("filepicker.content_type", file.ContentType)
	log.Info("file selected")
}
