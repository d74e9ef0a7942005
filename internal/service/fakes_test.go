package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hearthealth/hearthealth/internal/inference"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/repository"
)

type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*model.User
	predictions []*model.Prediction
	createErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*model.User)}
}

func (s *fakeStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)

	kept := s.predictions[:0]
	for _, p := range s.predictions {
		if p.UserID != id {
			kept = append(kept, p)
		}
	}
	s.predictions = kept
	return nil
}

func (s *fakeStore) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.predictions = append(s.predictions, p)
	return nil
}

func (s *fakeStore) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*model.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Prediction, 0)
	for _, p := range s.predictions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeModels map[string]*inference.Artifact

func (m fakeModels) Get(name string) (*inference.Artifact, error) {
	a, ok := m[name]
	if !ok {
		return nil, inference.ErrModelNotLoaded
	}
	return a, nil
}

// heartArtifact splits on scaled age, then on cp == 3.
func heartArtifact() *inference.Artifact {
	return &inference.Artifact{
		Version: "test-heart",
		Numeric: []inference.NumericFeature{
			{Name: "age", Mean: 50, Scale: 10},
			{Name: "oldpeak", Mean: 1, Scale: 1},
		},
		Categorical: []inference.CategoricalFeature{
			{Name: "cp", Kind: inference.KindInt, Categories: []string{"0", "1", "2", "3"}},
		},
		Classes:   []string{"0", "1"},
		RiskClass: 1,
		Trees: []inference.Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0, -2, -2},
				Value:         [][]float64{{5, 5}, {8, 2}, {2, 8}},
			},
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{5, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{5, 5}, {6, 4}, {0, 10}},
			},
		},
	}
}

func stressArtifact() *inference.Artifact {
	return &inference.Artifact{
		Version: "test-stress",
		Numeric: []inference.NumericFeature{
			{Name: "Systolic BP", Mean: 120, Scale: 10},
			{Name: "Diastolic BP", Mean: 80, Scale: 10},
		},
		Categorical: []inference.CategoricalFeature{
			{Name: "Gender", Kind: inference.KindString, Categories: []string{"Female", "Male"}},
		},
		Classes:   []string{"High Stress", "Low Stress", "Moderate Stress"},
		RiskClass: 0,
		Trees: []inference.Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{1, 1, 1}, {0, 6, 4}, {7, 0, 3}},
			},
		},
	}
}

var errBoom = errors.New("boom")
