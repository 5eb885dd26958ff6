package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/service"
)

const janitorInterval = time.Minute

// startJanitor forgets stopped matches in the background until ctx ends.
func startJanitor(ctx context.Context, mg *match.Manager, keep time.Duration) {
	go service.RunJanitor(ctx, mg, janitorInterval, keep)
}

// serve runs srv until ctx is cancelled, then drains connections.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: srv.Addr})
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
