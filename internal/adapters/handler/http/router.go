package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, resultHandler *ResultHandler, identity *IdentityMiddleware, metrics http.Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", clientIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Identify)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", pollHandler.ListPolls)
			r.With(RequireAdmin).Post("/", pollHandler.CreatePoll)

			r.Route("/{ref}", func(r chi.Router) {
				r.Get("/", pollHandler.GetPoll)
				r.With(RequireAdmin).Put("/", pollHandler.UpdatePoll)
				r.With(RequireAdmin).Post("/choices", pollHandler.AddChoice)
				r.Post("/votes", voteHandler.CastVote)
			})
		})

		r.Put("/votes/{id}", voteHandler.AmendVote)
		r.Get("/results/{ref}", resultHandler.GetResults)
	})

	return r
}
