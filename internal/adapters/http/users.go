package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/domain"
)

var ErrUsernameTaken = errors.New("username taken")

// UserStore is the account collaborator: it mints user ids and enforces
// username uniqueness. In-memory only; call history and accounts are not
// persisted.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[domain.UserID]*domain.User
	byUsername map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[domain.UserID]*domain.User),
		byUsername: make(map[string]*domain.User),
	}
}

func (s *UserStore) Create(username, firstName, lastName string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, ErrUsernameTaken
	}
	user, err := domain.NewUser(username, firstName, lastName)
	if err != nil {
		return nil, err
	}
	s.byID[user.ID] = user
	s.byUsername[username] = user
	log.Info().Str("module", "adapters.http").Str("user", string(user.ID)).Str("username", username).Msg("user created")
	return user, nil
}

func (s *UserStore) SignIn(username string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byUsername[username]
	return user, ok
}

// Lookup implements app.UserDirectory.
func (s *UserStore) Lookup(id domain.UserID) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	return user, ok
}

type createUserRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Username  string `json:"username" binding:"required"`
}

type signInRequest struct {
	Username string `json:"username" binding:"required"`
}

func handleCreateUser(store *UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
			return
		}

		user, err := store.Create(req.Username, req.FirstName, req.LastName)
		switch {
		case errors.Is(err, ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, user)
		}
	}
}

func handleSignIn(store *UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
			return
		}

		user, ok := store.SignIn(req.Username)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
