package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/sonder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sonder-backend/internal/domain"
)

func TestReactionRepo_ToggleAndCounts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewReactionRepo(db, testutil.Logger(t))

	source := testutil.SeedStory(t, ctx, tx, uuid.New(), types.StoryStatusApproved)
	sugg := testutil.SeedSuggestion(t, ctx, tx, source.ID, "en", types.GenerationMatched)
	user := uuid.New()

	if existing, err := repo.Find(ctx, tx, sugg.ID, user, "heart"); err != nil || existing != nil {
		t.Fatalf("Find before create: got=%v err=%v", existing, err)
	}

	rec := &types.Reaction{ID: uuid.New(), SuggestedID: sugg.ID, UserID: user, Type: "heart"}
	if err := repo.Create(ctx, tx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.Find(ctx, tx, sugg.ID, user, "heart")
	if err != nil || found == nil {
		t.Fatalf("Find after create: got=%v err=%v", found, err)
	}

	counts, err := repo.CountBySuggestedIDs(ctx, tx, []uuid.UUID{sugg.ID})
	if err != nil || counts[sugg.ID] != 1 {
		t.Fatalf("CountBySuggestedIDs: counts=%v err=%v", counts, err)
	}

	mine, err := repo.UserReactions(ctx, tx, user, []uuid.UUID{sugg.ID})
	if err != nil || mine[sugg.ID] != "heart" {
		t.Fatalf("UserReactions: mine=%v err=%v", mine, err)
	}

	if err := repo.DeleteByID(ctx, tx, found.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if existing, err := repo.Find(ctx, tx, sugg.ID, user, "heart"); err != nil || existing != nil {
		t.Fatalf("Find after delete: got=%v err=%v", existing, err)
	}
}
