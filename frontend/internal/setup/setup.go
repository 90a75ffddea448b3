package setup

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"github.com/circle-dev/circle/frontend/internal/apiclient"
	"github.com/circle-dev/circle/frontend/internal/handler"
	"github.com/circle-dev/circle/frontend/internal/markdown"
	"github.com/circle-dev/circle/frontend/internal/middleware"
	"github.com/circle-dev/circle/frontend/internal/session"
	"github.com/circle-dev/circle/shared/config"
	"github.com/circle-dev/circle/shared/jwt"
	"github.com/circle-dev/circle/shared/logger"
	"github.com/circle-dev/circle/shared/middleware/ratelimiter"
	"github.com/fsnotify/fsnotify"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
)

type Dependencies struct {
	Handler      *handler.Handler
	Jwt          jwt.JwtService
	Public       config.Public
	Sessions     *session.Store
	Identity     *middleware.Identity
	ReplyLimiter *ratelimiter.UserRateLimiter

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SetupDependencies wires everything the router needs and starts the
// background tasks: the session janitor and, when ENV=development, the
// template reloader. Close stops them.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	templates, err := LoadTemplates(cfg.Public.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	apiClient := apiclient.New(cfg.Public.APIBaseURL, cfg.Public.APITimeout)
	h := handler.New(templates, cfg.Public, markdown.New(), apiClient, jwtSvc)

	sessions := session.NewStore(cfg.Public.SessionTTL)
	sessions.StartJanitor(ctx, cfg.Public.SessionSweepInterval)

	deps := &Dependencies{
		Handler:      h,
		Jwt:          jwtSvc,
		Public:       cfg.Public,
		Sessions:     sessions,
		Identity:     middleware.NewIdentity(jwtSvc, cfg.Public.SecureCookies),
		ReplyLimiter: ratelimiter.PerMinute(cfg.Public.ReplyRatePerMinute),
		cancel:       cancel,
	}

	if os.Getenv("ENV") == "development" {
		if err := deps.startTemplateReloader(ctx, cfg.Public.TemplatesPath); err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to watch templates: %w", err)
		}
	}
	return deps, nil
}

// Close stops background tasks and waits for them to exit.
func (d *Dependencies) Close() {
	d.cancel()
	d.Sessions.Wait()
	d.ReplyLimiter.Stop()
	d.wg.Wait()
}

func bytesToMB(bytes int64) int64 {
	return bytes / (1024 * 1024)
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

// LoadTemplates parses every page template together with the base layout
// and the shared partials, keyed by file name.
func LoadTemplates(tmplPath string) (map[string]*template.Template, error) {
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"dict":      dict,
		"bytesToMB": bytesToMB,
		"avatarOf":  handler.AvatarOf,
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFiles(
			filepath.Join(tmplPath, baseTemplate),
			filepath.Join(tmplPath, f.Name()),
			filepath.Join(tmplPath, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	return templates, nil
}

// startTemplateReloader re-parses the templates whenever a file in tmplPath
// changes. A template that fails to parse keeps the previous set live.
func (d *Dependencies) startTemplateReloader(ctx context.Context, tmplPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(tmplPath); err != nil {
		watcher.Close()
		return err
	}

	log := logger.Component("template-reloader")
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				templates, err := LoadTemplates(tmplPath)
				if err != nil {
					log.Error("template reload failed", "file", event.Name, "error", err)
					continue
				}
				d.Handler.SetTemplates(templates)
				log.Info("templates reloaded", "file", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("template watcher error", "error", err)
			}
		}
	}()
	return nil
}
