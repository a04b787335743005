package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	lc     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client used to resolve caller identity.
// Without it the server runs in dev mode with a single local user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/profile", s.handleGetProfile)
		r.Patch("/profile", s.handleUpdateProfile)

		// Routines
		r.Post("/routines", s.handleCreateRoutine)
		r.Get("/routines", s.handleListRoutines)
		r.Get("/routines/{id}", s.handleGetRoutine)
		r.Patch("/routines/{id}", s.handleUpdateRoutine)
		r.Delete("/routines/{id}", s.handleDeleteRoutine)
		r.Get("/routines/{id}/history", s.handleRoutineHistory)
		r.Get("/routines/{id}/exercises/{exerciseId}/history", s.handleExerciseHistory)

		// Workout sessions
		r.Post("/workouts", s.handleStartWorkout)
		r.Get("/workouts/active", s.handleActiveWorkout)
		r.Get("/workouts/recent", s.handleRecentWorkouts)
		r.Get("/workouts/history", s.handleWorkoutHistory)
		r.Get("/workouts/spectatable", s.handleSpectatable)
		r.Get("/workouts/friends", s.handleFriendsActive)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/pause", s.handlePauseWorkout)
		r.Post("/workouts/{id}/resume", s.handleResumeWorkout)
		r.Post("/workouts/{id}/complete", s.handleCompleteWorkout)
		r.Post("/workouts/{id}/cancel", s.handleCancelWorkout)
		r.Post("/workouts/{id}/heartbeat", s.handleHeartbeat)
		r.Post("/workouts/{id}/sets", s.handleAddSet)

		// Sets
		r.Get("/sets/{id}", s.handleGetSet)
		r.Patch("/sets/{id}", s.handleUpdateSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		// Personal records
		r.Get("/exercises/{exerciseId}/prs", s.handleExercisePRs)

		// Friends
		r.Post("/friends", s.handleSendFriendRequest)
		r.Post("/friends/{id}/respond", s.handleRespondFriendRequest)
		r.Get("/friends", s.handleListFriends)
	})
}
