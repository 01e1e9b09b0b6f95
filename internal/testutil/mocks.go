package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/cache"
	"github.com/windoze95/saltybytes-chef/internal/models"
	"github.com/windoze95/saltybytes-chef/internal/repository"
)

// --- MockSearcher ---

// MockSearcher is a mock implementation of ai.Searcher.
type MockSearcher struct {
	mu         sync.Mutex
	SearchFunc func(ctx context.Context, query string, skipCache bool) ai.SearchResult
	Calls      int
}

func (m *MockSearcher) Search(ctx context.Context, query string, skipCache bool) ai.SearchResult {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, skipCache)
	}
	return ai.SearchResult{}
}

// --- MockGenerator ---

// MockGenerator is a mock implementation of ai.Generator.
type MockGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, prompt string) (*ai.RecipeDraft, error)
	ModelName    string
	Calls        int
	Prompts      []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*ai.RecipeDraft, error) {
	m.mu.Lock()
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return nil, fmt.Errorf("Generate not configured")
}

func (m *MockGenerator) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// --- MockStore ---

// MockStore is a mock implementation of cache.Store. Unset funcs behave as
// an always-missing backend.
type MockStore struct {
	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, cache.ErrMiss
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *MockStore) Close() error { return nil }

// --- MockChefRepo ---

// MockChefRepo is an in-memory mock implementation of repository.ChefRepo.
type MockChefRepo struct {
	mu           sync.Mutex
	Messages     []models.ChatMessage
	Drafts       map[uint]*models.RecipeDraft
	Recipes      map[uint]*models.Recipe
	NextID       uint
	NextDraftID  uint
	NextRecipeID uint

	// Error overrides: set these to force specific methods to return errors.
	CreateChatMessageErr error
	CreateDraftErr       error
	PublishDraftErr      error
}

// NewMockChefRepo creates a new MockChefRepo with initialized maps.
func NewMockChefRepo() *MockChefRepo {
	return &MockChefRepo{
		Drafts:       make(map[uint]*models.RecipeDraft),
		Recipes:      make(map[uint]*models.Recipe),
		NextID:       1,
		NextDraftID:  1,
		NextRecipeID: 1,
	}
}

func (m *MockChefRepo) CreateChatMessage(msg *models.ChatMessage) error {
	if m.CreateChatMessageErr != nil {
		return m.CreateChatMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.NextID
	m.NextID++
	msg.CreatedAt = time.Now()
	m.Messages = append(m.Messages, *msg)
	return nil
}

func (m *MockChefRepo) ListChatMessages(userID uint) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.Messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockChefRepo) DeleteChatMessages(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Messages[:0]
	for _, msg := range m.Messages {
		if msg.UserID != userID {
			kept = append(kept, msg)
		}
	}
	m.Messages = kept
	return nil
}

func (m *MockChefRepo) CreateDraft(draft *models.RecipeDraft) error {
	if m.CreateDraftErr != nil {
		return m.CreateDraftErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	draft.ID = m.NextDraftID
	m.NextDraftID++
	draft.CreatedAt = time.Now()
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	stored := *draft
	m.Drafts[draft.ID] = &stored
	return nil
}

func (m *MockChefRepo) GetDraft(userID, draftID uint) (*models.RecipeDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Drafts[draftID]
	if !ok || d.UserID != userID {
		return nil, repository.NewNotFoundError("Draft not found")
	}
	out := *d
	return &out, nil
}

func (m *MockChefRepo) GetLatestDraft(userID uint) (*models.RecipeDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint
	for id, d := range m.Drafts {
		if d.UserID == userID && d.Status == models.DraftStatusDraft {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.NewNotFoundError("Draft not found")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := *m.Drafts[ids[0]]
	return &out, nil
}

func (m *MockChefRepo) DeleteUnpublishedDrafts(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.Drafts {
		if d.UserID == userID && d.Status != models.DraftStatusPublished {
			delete(m.Drafts, id)
		}
	}
	return nil
}

func (m *MockChefRepo) PublishDraft(draft *models.RecipeDraft, recipe *models.Recipe) error {
	if m.PublishDraftErr != nil {
		return m.PublishDraftErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Drafts[draft.ID]
	if !ok {
		return repository.NewNotFoundError("Draft not found")
	}
	if stored.Status == models.DraftStatusPublished {
		return repository.ErrStateConflict
	}
	recipe.ID = m.NextRecipeID
	m.NextRecipeID++
	r := *recipe
	m.Recipes[recipe.ID] = &r

	stored.Status = models.DraftStatusPublished
	stored.PublishedRecipeID = &recipe.ID
	draft.Status = models.DraftStatusPublished
	draft.PublishedRecipeID = &recipe.ID
	return nil
}
