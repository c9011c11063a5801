// Package status serves a small HTTP endpoint describing a running bot.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/handler"
)

// Unit is one registered unit as reported by /units.
type Unit struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Info string `json:"info"`
}

// Units lists every command, replacer and react command of core.
func Units(core *handler.Core) []Unit {
	prefix := core.Prefix()
	var out []Unit
	for _, c := range core.Commands.All() {
		out = append(out, Unit{Kind: "command", ID: c.ID, Info: c.InfoString(prefix)})
	}
	for _, r := range core.Replacers.All() {
		out = append(out, Unit{Kind: "replacer", ID: r.ID, Info: r.InfoString("")})
	}
	for _, r := range core.Reacts.All() {
		out = append(out, Unit{Kind: "react", ID: r.ID, Info: r.InfoString("")})
	}
	return out
}

// StatsSource reports store statistics for /healthz.
type StatsSource interface {
	Stats() map[string]any
}

// Router builds the gin engine for core. store may be nil.
func Router(core *handler.Core, started time.Time, store StatsSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		body := gin.H{
			"status":     "ok",
			"bot":        core.Name(),
			"uptime":     time.Since(started).Round(time.Second).String(),
			"awaits":     core.Awaits.Len(),
			"jobs":       len(core.Jobs()),
			"job_status": core.JobStatus(),
		}
		if store != nil {
			body["storage"] = store.Stats()
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/units", func(c *gin.Context) {
		c.JSON(http.StatusOK, Units(core))
	})
	return r
}

// Serve runs the endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, core *handler.Core, store StatsSource, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(core, time.Now(), store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("status endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("status endpoint: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
