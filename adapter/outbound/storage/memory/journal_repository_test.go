package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoBatchPrint/domain/model"
)

func report(id string) *model.SessionReport {
	return &model.SessionReport{
		Session: model.Session{ID: id, Files: []string{id + ".pdf"}},
		Results: []model.PrintResult{{Path: "/d/" + id + ".pdf", Status: model.ResultSuccess}},
	}
}

func ids(reports []*model.SessionReport) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestJournalRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository(0)

	empty, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 1; i <= 4; i++ {
		require.NoError(t, repo.Append(ctx, report(fmt.Sprintf("s%d", i))))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s4", "s3", "s2", "s1"}, ids(all))

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"s4", "s3"}, ids(limited))
}

func TestJournalRepository_MaxEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository(2)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, report(fmt.Sprintf("s%d", i))))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s5", "s4"}, ids(all))
}

func TestJournalRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository(0)

	original := report("s1")
	require.NoError(t, repo.Append(ctx, original))
	original.Results[0].Status = model.ResultFailure

	listed, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ResultSuccess, listed[0].Results[0].Status)

	listed[0].Results[0].Detail = "mutated"
	again, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again[0].Results[0].Detail)
}
