package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Games        *GameHandler
	Participants *ParticipantHandler
	// Admin wraps endpoints that change games or templates.
	Admin func(http.Handler) http.Handler
	// Player wraps join, leave and registration. Nil leaves them open.
	Player     func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.Admin == nil {
			return h
		}
		return cfg.Admin(h).ServeHTTP
	}
	player := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.Player == nil {
			return h
		}
		return cfg.Player(h).ServeHTTP
	}

	if cfg.Games != nil {
		games := cfg.Games
		mux.HandleFunc("/occurrences", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				games.ListUpcoming(w, r)
			case http.MethodPost:
				admin(games.CreateOccurrence)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/occurrences/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/occurrences/")
			segments := strings.Split(rest, "/")
			if segments[0] == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithOccurrenceID(r.Context(), segments[0])
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 2 && segments[1] == "date":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				admin(games.EditDate)(w, r)
			case len(segments) == 2 && segments[1] == "publish":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				admin(games.Publish)(w, r)
			case len(segments) == 2 && segments[1] == "preview":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				admin(games.Preview)(w, r)
			case len(segments) == 2 && segments[1] == "registrations":
				switch r.Method {
				case http.MethodGet:
					games.Roster(w, r)
				case http.MethodPost:
					player(games.Join)(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case len(segments) == 3 && segments[1] == "registrations" && segments[2] != "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				r = r.WithContext(ContextWithParticipantID(r.Context(), segments[2]))
				player(games.Leave)(w, r)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/templates", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				admin(games.ListTemplates)(w, r)
			case http.MethodPost:
				admin(games.CreateTemplate)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/templates/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/templates/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			r = r.WithContext(ContextWithTemplateID(r.Context(), id))
			admin(games.DeactivateTemplate)(w, r)
		})
		mux.HandleFunc("/archive", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			admin(games.Archive)(w, r)
		})
		mux.HandleFunc("/spawn", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			admin(games.Spawn)(w, r)
		})
	}

	if cfg.Participants != nil {
		participants := cfg.Participants
		mux.HandleFunc("/participants", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			player(participants.Register)(w, r)
		})
		mux.HandleFunc("/participants/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/participants/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithParticipantID(r.Context(), id))
			participants.Get(w, r)
		})
		mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			admin(participants.Stats)(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
