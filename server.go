package imgpaste

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/middleware"
	"github.com/staticbackendhq/imgpaste/paste"
	"github.com/staticbackendhq/imgpaste/settings"
	"github.com/staticbackendhq/imgpaste/storage"
	"golang.org/x/sync/errgroup"
)

// Setup loads the settings and returns an orchestrator with its provider
// initialized. A provider that cannot be built is logged, not fatal: the
// settings endpoint can still fix it.
func Setup(ctx context.Context, cfg config.AppConfig, store settings.Store, notifier paste.Notifier, log *logger.Logger) *paste.Orchestrator {
	s, err := store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("unable to load settings, using defaults")
	}

	o := paste.New(storage.FromSettings(cfg, log.Component("storage")), notifier, paste.AlwaysOnline{}, log.Component("paste"))
	if err := o.Init(s); err != nil {
		log.Warn().Err(err).Msg("starting without upload provider")
	}
	return o
}

// NewHandler registers the HTTP routes.
func NewHandler(o *paste.Orchestrator, store settings.Store, log *logger.Logger) http.Handler {
	std := []middleware.Middleware{
		middleware.Logging(log),
		middleware.Cors(),
	}

	u := &uploads{orch: o, log: log}
	p := &preferences{store: store, orch: o, log: log}

	mux := http.NewServeMux()
	mux.Handle("/upload", middleware.ChainFunc(u.upload, std...))
	mux.Handle("/paste", middleware.ChainFunc(u.paste, std...))
	mux.Handle("/settings", middleware.ChainFunc(p.handle, std...))
	mux.HandleFunc("/ping", ping)

	return mux
}

func ping(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, true)
}

// Start serves the HTTP host until SIGINT or SIGTERM.
func Start(c config.AppConfig) {
	config.Current = c

	log := logger.Get(c)

	// graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle stop/kill signal
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

		<-ch
		cancel()
	}()

	store := settings.New(c, log)
	o := Setup(ctx, c, store, paste.LogNotifier{Log: log}, log)
	defer o.Close()

	httpsvr := &http.Server{
		Addr:    ":" + c.Port,
		Handler: NewHandler(o, store, log),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("server listening on :%s", c.Port)
		return httpsvr.ListenAndServe()
	})
	g.Go(func() error {
		<-gCtx.Done()
		return httpsvr.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("exit reason")
	}
}
