package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/windoze95/saltybytes-chef/internal/format"
	"github.com/windoze95/saltybytes-chef/internal/models"
	"github.com/windoze95/saltybytes-chef/internal/repository"
	"github.com/windoze95/saltybytes-chef/internal/testutil"
)

type stubSuggester struct {
	result *SuggestionResult
	err    error
	calls  int
	last   SuggestionRequest
}

func (s *stubSuggester) Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResult, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testSuggestionResult() *SuggestionResult {
	draft := testutil.TestDraft()
	caps := format.DefaultCaps
	return &SuggestionResult{
		DisplayText: format.Display(draft, caps),
		FormFields:  format.FormFields(draft, caps),
		Raw:         *draft,
		Metadata:    SuggestionMetadata{UsedRetrieval: true},
	}
}

func newTestChefService() (*ChefService, *testutil.MockChefRepo, *stubSuggester) {
	repo := testutil.NewMockChefRepo()
	sug := &stubSuggester{result: testSuggestionResult()}
	return NewChefService(repo, sug, nil), repo, sug
}

func TestSendMessage_CreatesDraftAndReply(t *testing.T) {
	svc, repo, sug := newTestChefService()

	reply, err := svc.SendMessage(context.Background(), 7, "  lemon chicken ", "gluten-free")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if sug.last.Prompt != "lemon chicken" || sug.last.Dietary != "gluten-free" {
		t.Errorf("suggest request = %+v", sug.last)
	}

	msgs, _ := repo.ListChatMessages(7)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "lemon chicken\n\nDietary requirements: gluten-free" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || !strings.Contains(msgs[1].Content, "🍳 **Lemon Herb Chicken**") {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if msgs[1].DraftID == nil || *msgs[1].DraftID != reply.Draft.ID {
		t.Errorf("assistant message not linked to draft %d", reply.Draft.ID)
	}

	if reply.Draft.Status != models.DraftStatusDraft {
		t.Errorf("draft status = %s, want %s", reply.Draft.Status, models.DraftStatusDraft)
	}
	if reply.Draft.Payload.Title != "Lemon Herb Chicken" {
		t.Errorf("draft title = %q", reply.Draft.Payload.Title)
	}
	if !reply.Draft.UsedRetrieval {
		t.Error("draft UsedRetrieval = false, want true")
	}
}

func TestSendMessage_FailureStoresApology(t *testing.T) {
	svc, repo, sug := newTestChefService()
	sug.err = &ConfigurationError{Missing: []string{"OPENAI_API_KEY"}}

	_, err := svc.SendMessage(context.Background(), 1, "soup", "")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}

	msgs, _ := repo.ListChatMessages(1)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if !strings.HasPrefix(msgs[1].Content, "Sorry, I couldn't generate a recipe right now") {
		t.Errorf("apology = %q", msgs[1].Content)
	}
	if len(repo.Drafts) != 0 {
		t.Errorf("drafts = %d, want 0", len(repo.Drafts))
	}
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"empty", "   "},
		{"too long", strings.Repeat("a", MaxPromptChars+1)},
		{"profane", "make me a shit sandwich"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, sug := newTestChefService()
			_, err := svc.SendMessage(context.Background(), 1, tt.prompt, "")
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if sug.calls != 0 {
				t.Errorf("suggester calls = %d, want 0", sug.calls)
			}
			if len(repo.Messages) != 0 {
				t.Errorf("messages = %d, want 0", len(repo.Messages))
			}
		})
	}
}

func TestValidatePrompt_AllowsFoodNames(t *testing.T) {
	prompts := []string{
		"rum balls",
		"spotted dick with custard",
		"meatballs with coarse salt",
		"banana loaf",
		"jerk chicken",
		"cumin roasted carrots",
		"cock-a-leekie soup",
		"blueberry muffins",
		"pulled pork butt",
		"shiitake stir fry",
	}
	for _, prompt := range prompts {
		if err := ValidatePrompt(prompt); err != nil {
			t.Errorf("ValidatePrompt(%q) = %v, want nil", prompt, err)
		}
	}
}

func TestValidatePrompt_RejectsProfanity(t *testing.T) {
	prompts := []string{
		"make me a shit sandwich",
		"what the fuck is for dinner",
		"dumbass",
	}
	for _, prompt := range prompts {
		var vErr *ValidationError
		if err := ValidatePrompt(prompt); !errors.As(err, &vErr) {
			t.Errorf("ValidatePrompt(%q) = %v, want *ValidationError", prompt, err)
		}
	}
}

func TestHistory(t *testing.T) {
	svc, _, _ := newTestChefService()

	empty, err := svc.History(3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(empty.Messages) != 0 || empty.LatestDraft != nil {
		t.Errorf("empty history = %+v", empty)
	}

	first, _ := svc.SendMessage(context.Background(), 3, "pasta", "")
	second, _ := svc.SendMessage(context.Background(), 3, "salad", "")

	h, err := svc.History(3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Messages) != 4 {
		t.Errorf("messages = %d, want 4", len(h.Messages))
	}
	if h.LatestDraft == nil || h.LatestDraft.ID != second.Draft.ID {
		t.Errorf("latest draft = %+v, want id %d (not %d)", h.LatestDraft, second.Draft.ID, first.Draft.ID)
	}
}

func TestPublish(t *testing.T) {
	svc, repo, _ := newTestChefService()
	ctx := context.Background()
	reply, err := svc.SendMessage(ctx, 5, "lemon chicken", "")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	recipe, err := svc.Publish(ctx, 5, reply.Draft.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if recipe.Title != "Lemon Herb Chicken" || recipe.OwnerID != 5 {
		t.Errorf("recipe = %+v", recipe)
	}
	if len(recipe.Ingredients) != 4 || len(recipe.Instructions) != 3 {
		t.Errorf("ingredients = %d, instructions = %d, want 4 and 3", len(recipe.Ingredients), len(recipe.Instructions))
	}
	if recipe.Instructions[0] != "Season the chicken with thyme" {
		t.Errorf("instruction[0] = %q", recipe.Instructions[0])
	}
	if recipe.PrepTimeMinutes == nil || *recipe.PrepTimeMinutes != 10 {
		t.Errorf("prep = %v, want 10", recipe.PrepTimeMinutes)
	}
	if repo.Drafts[reply.Draft.ID].Status != models.DraftStatusPublished {
		t.Error("draft not marked published")
	}

	if _, err := svc.Publish(ctx, 5, reply.Draft.ID); !errors.Is(err, ErrAlreadyPublished) {
		t.Errorf("second Publish err = %v, want ErrAlreadyPublished", err)
	}
	if len(repo.Recipes) != 1 {
		t.Errorf("recipes = %d, want 1", len(repo.Recipes))
	}
}

func TestPublish_OtherUsersDraft(t *testing.T) {
	svc, _, _ := newTestChefService()
	reply, _ := svc.SendMessage(context.Background(), 5, "lemon chicken", "")

	_, err := svc.Publish(context.Background(), 6, reply.Draft.ID)
	if !repository.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestPublish_RaceReportsAlreadyPublished(t *testing.T) {
	svc, repo, _ := newTestChefService()
	reply, _ := svc.SendMessage(context.Background(), 5, "lemon chicken", "")
	repo.PublishDraftErr = repository.ErrStateConflict

	if _, err := svc.Publish(context.Background(), 5, reply.Draft.ID); !errors.Is(err, ErrAlreadyPublished) {
		t.Errorf("err = %v, want ErrAlreadyPublished", err)
	}
}

func TestPublish_MissingFields(t *testing.T) {
	svc, repo, _ := newTestChefService()
	draft := &models.RecipeDraft{UserID: 2, Payload: models.DraftPayload{Title: "Toast"}}
	if err := repo.CreateDraft(draft); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	_, err := svc.Publish(context.Background(), 2, draft.ID)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if !strings.Contains(vErr.Message, "ingredients, instructions") {
		t.Errorf("message = %q", vErr.Message)
	}
}

func TestClear(t *testing.T) {
	svc, repo, _ := newTestChefService()
	ctx := context.Background()
	published, _ := svc.SendMessage(ctx, 4, "lemon chicken", "")
	if _, err := svc.Publish(ctx, 4, published.Draft.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	svc.SendMessage(ctx, 4, "pasta", "")
	svc.SendMessage(ctx, 9, "pasta", "")

	if err := svc.Clear(4); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	h, _ := svc.History(4)
	if len(h.Messages) != 0 || h.LatestDraft != nil {
		t.Errorf("history after clear = %d messages, draft %+v", len(h.Messages), h.LatestDraft)
	}
	if _, ok := repo.Drafts[published.Draft.ID]; !ok {
		t.Error("published draft was deleted")
	}
	other, _ := svc.History(9)
	if len(other.Messages) != 2 {
		t.Errorf("other user's messages = %d, want 2", len(other.Messages))
	}
}
