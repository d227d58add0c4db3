package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/testutil"
)

func Test_NoteRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	createSkill := func(t *testing.T, tx pgx.Tx, slug string) models.Skill {
		t.Helper()
		repo := SkillRepo{DB: tx}
		skill, err := repo.CreateSkill(t.Context(), models.Skill{Slug: slug, Title: slug})
		require.NoError(t, err)
		return skill
	}

	t.Run("create and list notes", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			author := createTestUser(t, tx, "author")
			skill := createSkill(t, tx, "go-basics")
			repo := NoteRepo{DB: tx}

			first, err := repo.CreateNote(t.Context(), models.Note{
				AuthorID: author.ID,
				SkillID:  skill.ID,
				Body:     "first note",
				Credit:   decimal.NewFromInt(10),
			})
			require.NoError(t, err)
			assert.Equal(t, "first note", first.Body)
			assert.True(t, first.Credit.Equal(decimal.NewFromInt(10)))

			// Keep created_at strictly ordered
			time.Sleep(10 * time.Millisecond)

			second, err := repo.CreateNote(t.Context(), models.Note{
				AuthorID: author.ID,
				SkillID:  skill.ID,
				Body:     "second note",
				Credit:   decimal.NewFromInt(10),
			})
			require.NoError(t, err)

			notes, err := repo.ListRecentNotes(t.Context(), 10)
			require.NoError(t, err)
			require.Len(t, notes, 2)
			assert.Equal(t, second.ID, notes[0].ID, "newest note should come first")
			assert.Equal(t, first.ID, notes[1].ID)

			limited, err := repo.ListRecentNotes(t.Context(), 1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
		})
	})
}

func Test_CreditRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("balance sums entries", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			author := createTestUser(t, tx, "author")
			skillRepo := SkillRepo{DB: tx}
			skill, err := skillRepo.CreateSkill(t.Context(), models.Skill{Slug: "s", Title: "S"})
			require.NoError(t, err)

			noteRepo := NoteRepo{DB: tx}
			creditRepo := CreditRepo{DB: tx}

			for _, amount := range []int64{10, 10, 5} {
				note, err := noteRepo.CreateNote(t.Context(), models.Note{
					AuthorID: author.ID,
					SkillID:  skill.ID,
					Body:     "note",
					Credit:   decimal.NewFromInt(amount),
				})
				require.NoError(t, err)

				_, err = creditRepo.AddEntry(t.Context(), models.CreditEntry{
					UserID: author.ID,
					NoteID: note.ID,
					Amount: decimal.NewFromInt(amount),
				})
				require.NoError(t, err)
			}

			balance, err := creditRepo.Balance(t.Context(), author.ID)
			require.NoError(t, err)
			assert.True(t, balance.Equal(decimal.NewFromInt(25)), "balance should be 25, got %s", balance)
		})
	})

	t.Run("balance of user without entries is zero", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "fresh")
			creditRepo := CreditRepo{DB: tx}

			balance, err := creditRepo.Balance(t.Context(), user.ID)
			require.NoError(t, err)
			assert.True(t, balance.IsZero())
		})
	})
}
