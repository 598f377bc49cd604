package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/sonder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sonder-backend/internal/domain"
)

func TestFollowRepo_IdempotentPair(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewFollowRepo(db, testutil.Logger(t))

	follower := uuid.New()
	followed := uuid.New()

	// Following twice must leave exactly one row.
	for i := 0; i < 2; i++ {
		if err := repo.Create(ctx, tx, &types.Follow{ID: uuid.New(), Follower: follower, Followed: followed}); err != nil {
			t.Fatalf("Create (attempt %d): %v", i+1, err)
		}
	}

	exists, err := repo.Exists(ctx, tx, follower, followed)
	if err != nil || !exists {
		t.Fatalf("Exists: got=%v err=%v", exists, err)
	}
	followers, err := repo.CountFollowers(ctx, tx, followed)
	if err != nil || followers != 1 {
		t.Fatalf("CountFollowers: got=%d err=%v", followers, err)
	}
	following, err := repo.CountFollowing(ctx, tx, follower)
	if err != nil || following != 1 {
		t.Fatalf("CountFollowing: got=%d err=%v", following, err)
	}

	if err := repo.Delete(ctx, tx, follower, followed); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = repo.Exists(ctx, tx, follower, followed)
	if err != nil || exists {
		t.Fatalf("Exists after delete: got=%v err=%v", exists, err)
	}
}
